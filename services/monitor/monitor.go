package monitor

import (
	"context"
	"fmt"
	"time"

	bookingRepo "serbisyo/database/repository/booking"
	metricsRepo "serbisyo/database/repository/metrics"
	"serbisyo/models"

	"go.uber.org/zap"
)

// counterFor maps an event type to its daily counter field.
var counterFor = map[string]string{
	models.EventPaymentCreated:  "created",
	models.EventPaymentSuccess:  "successful",
	models.EventPaymentFailed:   "failed",
	models.EventPaymentVerified: "verified",
	models.EventPaymentRejected: "rejected",
}

// Engine records every payment lifecycle event and aggregates per-day
// metrics. It reports anomalies; remediation is an alerting concern outside
// this core.
type Engine struct {
	Repo     metricsRepo.MetricsRepository
	Bookings bookingRepo.BookingRepository
	Logger   *zap.Logger
}

// TrackEvent appends the event to the log and bumps that day's counter with
// an atomic increment. Tracking failures are logged, never propagated: a
// telemetry outage must not fail a payment.
func (e *Engine) TrackEvent(ctx context.Context, event models.PaymentEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := e.Repo.AppendEvent(ctx, event); err != nil {
		e.Logger.Error("failed to append payment event",
			zap.String("eventType", event.EventType), zap.Error(err))
		return
	}

	counter, ok := counterFor[event.EventType]
	if !ok {
		e.Logger.Warn("unknown payment event type", zap.String("eventType", event.EventType))
		return
	}

	// The summed amount tracks created events only, so averageAmount reflects
	// attempted payment size rather than double-counting outcomes.
	amount := 0.0
	if event.EventType == models.EventPaymentCreated {
		amount = event.Amount
	}
	date := event.Timestamp.Format("2006-01-02")
	if err := e.Repo.IncrementDaily(ctx, date, counter, amount); err != nil {
		e.Logger.Error("failed to increment daily metrics",
			zap.String("date", date), zap.String("counter", counter), zap.Error(err))
	}
}

// GetMetrics sums the daily counters over [from, to] and derives the success
// rate and average amount.
func (e *Engine) GetMetrics(ctx context.Context, from, to string) (*models.MetricsSummary, error) {
	rows, err := e.Repo.GetDailyRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily metrics: %w", err)
	}

	summary := &models.MetricsSummary{From: from, To: to}
	for _, row := range rows {
		summary.Created += row.Created
		summary.Successful += row.Successful
		summary.Failed += row.Failed
		summary.Verified += row.Verified
		summary.Rejected += row.Rejected
		summary.TotalAmount += row.TotalAmount
	}
	if summary.Created > 0 {
		summary.SuccessRate = float64(summary.Successful) / float64(summary.Created)
		summary.AverageAmount = summary.TotalAmount / float64(summary.Created)
	}
	return summary, nil
}
