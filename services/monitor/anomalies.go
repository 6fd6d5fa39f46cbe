package monitor

import (
	"context"
	"fmt"
	"math"
	"time"

	"serbisyo/models"

	"go.uber.org/zap"
)

const (
	failureRateThreshold = 0.2
	failureRateMinTotal  = 10
	amountDeviationSigma = 3.0
	stalledProofAge      = time.Hour
	duplicateClusterAge  = time.Hour
)

// CheckAnomalies inspects recent payment activity for failure-rate spikes,
// amount outliers, duplicate clusters, and stalled manual verifications.
func (e *Engine) CheckAnomalies(ctx context.Context) (*models.AnomalyReport, error) {
	report := &models.AnomalyReport{}
	now := time.Now()

	dayEvents, err := e.Repo.EventsSince(ctx, now.Add(-24*time.Hour), "")
	if err != nil {
		return nil, fmt.Errorf("failed to load trailing-day events: %w", err)
	}

	var created, failed int
	var recentCreated []models.PaymentEvent
	for _, ev := range dayEvents {
		switch ev.EventType {
		case models.EventPaymentCreated:
			created++
			recentCreated = append(recentCreated, ev)
		case models.EventPaymentFailed:
			failed++
		}
	}
	if created > failureRateMinTotal && float64(failed)/float64(created) > failureRateThreshold {
		report.HighFailureRate = true
		report.Details = append(report.Details, fmt.Sprintf(
			"failure rate %.0f%% over %d payments in the trailing day",
			100*float64(failed)/float64(created), created,
		))
	}

	weekCreated, err := e.Repo.EventsSince(ctx, now.Add(-7*24*time.Hour), models.EventPaymentCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to load trailing-week events: %w", err)
	}
	if mean, stddev, ok := amountStats(weekCreated); ok && stddev > 0 {
		for _, ev := range recentCreated {
			if math.Abs(ev.Amount-mean) > amountDeviationSigma*stddev {
				report.UnusualAmounts = true
				report.Details = append(report.Details, fmt.Sprintf(
					"payment of ₱%.2f for booking %s deviates more than %.0fσ from the weekly mean ₱%.2f",
					ev.Amount, ev.BookingID, amountDeviationSigma, mean,
				))
				break
			}
		}
	}

	hourCreated, err := e.Repo.EventsSince(ctx, now.Add(-duplicateClusterAge), models.EventPaymentCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to load trailing-hour events: %w", err)
	}
	clusters := map[string]int{}
	for _, ev := range hourCreated {
		key := fmt.Sprintf("%s|%.2f|%s", ev.BookingID, ev.Amount, ev.PaymentMethod)
		clusters[key]++
		if clusters[key] > 1 {
			report.DuplicatePayments = true
		}
	}
	if report.DuplicatePayments {
		report.Details = append(report.Details, "multiple identical payment attempts within the trailing hour")
	}

	stalled, err := e.Bookings.FindStalledProofs(ctx, now.Add(-stalledProofAge))
	if err != nil {
		// Soft check: log and report the rest rather than failing the sweep.
		e.Logger.Warn("stalled proof lookup failed", zap.Error(err))
	} else if len(stalled) > 0 {
		report.SlowProcessing = true
		report.Details = append(report.Details, fmt.Sprintf(
			"%d bookings have proof uploads pending verification for over an hour", len(stalled),
		))
	}

	return report, nil
}

// amountStats returns the mean and population standard deviation of the
// event amounts.
func amountStats(events []models.PaymentEvent) (mean, stddev float64, ok bool) {
	if len(events) == 0 {
		return 0, 0, false
	}
	var sum float64
	for _, ev := range events {
		sum += ev.Amount
	}
	mean = sum / float64(len(events))

	var sq float64
	for _, ev := range events {
		d := ev.Amount - mean
		sq += d * d
	}
	stddev = math.Sqrt(sq / float64(len(events)))
	return mean, stddev, true
}
