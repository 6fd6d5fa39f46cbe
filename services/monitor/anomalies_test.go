package monitor

import (
	"context"
	"testing"
	"time"

	"serbisyo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvents(metrics *memMetricsRepo, eventType string, count int, amount float64, age time.Duration) {
	ts := time.Now().Add(-age)
	for i := 0; i < count; i++ {
		metrics.events = append(metrics.events, models.PaymentEvent{
			EventType:     eventType,
			BookingID:     "b-seed",
			Amount:        amount,
			PaymentMethod: models.PaymentMethodGCash,
			Timestamp:     ts,
		})
	}
}

func TestCheckAnomaliesQuietPeriod(t *testing.T) {
	engine, metrics, _ := newTestEngine()
	seedEvents(metrics, models.EventPaymentCreated, 5, 1000, 2*time.Hour)
	seedEvents(metrics, models.EventPaymentSuccess, 5, 1000, 2*time.Hour)

	report, err := engine.CheckAnomalies(context.Background())
	require.NoError(t, err)
	assert.False(t, report.HighFailureRate)
	assert.False(t, report.UnusualAmounts)
	assert.False(t, report.DuplicatePayments)
	assert.False(t, report.SlowProcessing)
}

func TestCheckAnomaliesHighFailureRate(t *testing.T) {
	engine, metrics, _ := newTestEngine()
	// 11 created, 3 failed: rate ~27% over more than the minimum sample.
	seedEvents(metrics, models.EventPaymentCreated, 11, 1000, 2*time.Hour)
	seedEvents(metrics, models.EventPaymentFailed, 3, 1000, 2*time.Hour)

	report, err := engine.CheckAnomalies(context.Background())
	require.NoError(t, err)
	assert.True(t, report.HighFailureRate)
	assert.NotEmpty(t, report.Details)
}

func TestCheckAnomaliesFailureRateNeedsMinimumSample(t *testing.T) {
	engine, metrics, _ := newTestEngine()
	// 100% failure but too few payments to matter.
	seedEvents(metrics, models.EventPaymentCreated, 3, 1000, 2*time.Hour)
	seedEvents(metrics, models.EventPaymentFailed, 3, 1000, 2*time.Hour)

	report, err := engine.CheckAnomalies(context.Background())
	require.NoError(t, err)
	assert.False(t, report.HighFailureRate)
}

func TestCheckAnomaliesAmountOutlier(t *testing.T) {
	engine, metrics, _ := newTestEngine()
	// A week of payments around ₱1000 with slight spread, then one huge
	// recent payment far outside three standard deviations.
	for i := 0; i < 20; i++ {
		amount := 950.0
		if i%2 == 0 {
			amount = 1050.0
		}
		metrics.events = append(metrics.events, models.PaymentEvent{
			EventType: models.EventPaymentCreated,
			BookingID: "b-week",
			Amount:    amount,
			Timestamp: time.Now().Add(-3 * 24 * time.Hour),
		})
	}
	metrics.events = append(metrics.events, models.PaymentEvent{
		EventType: models.EventPaymentCreated,
		BookingID: "b-outlier",
		Amount:    50000,
		Timestamp: time.Now().Add(-time.Hour),
	})

	report, err := engine.CheckAnomalies(context.Background())
	require.NoError(t, err)
	assert.True(t, report.UnusualAmounts)
}

func TestCheckAnomaliesDuplicateCluster(t *testing.T) {
	engine, metrics, _ := newTestEngine()
	// Two identical (booking, amount, method) attempts inside the hour.
	for i := 0; i < 2; i++ {
		metrics.events = append(metrics.events, models.PaymentEvent{
			EventType:     models.EventPaymentCreated,
			BookingID:     "b-dup",
			Amount:        1000,
			PaymentMethod: models.PaymentMethodGCash,
			Timestamp:     time.Now().Add(-10 * time.Minute),
		})
	}

	report, err := engine.CheckAnomalies(context.Background())
	require.NoError(t, err)
	assert.True(t, report.DuplicatePayments)
}

func TestCheckAnomaliesStalledProofs(t *testing.T) {
	engine, _, bookings := newTestEngine()
	uploaded := time.Now().Add(-2 * time.Hour)
	bookings.stalled = []models.Booking{{
		ID:              "b-stalled",
		Status:          models.BookingStatusPendingPayment,
		ProofUploadedAt: &uploaded,
	}}

	report, err := engine.CheckAnomalies(context.Background())
	require.NoError(t, err)
	assert.True(t, report.SlowProcessing)
	assert.NotEmpty(t, report.Details)
}
