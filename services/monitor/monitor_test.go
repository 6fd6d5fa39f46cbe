package monitor

import (
	"context"
	"testing"
	"time"

	bookingRepo "serbisyo/database/repository/booking"
	"serbisyo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memMetricsRepo is an in-memory MetricsRepository for engine tests.
type memMetricsRepo struct {
	events    []models.PaymentEvent
	daily     map[string]*models.DailyMetrics
	appendErr error
	rangeRows []models.DailyMetrics
}

func newMemMetricsRepo() *memMetricsRepo {
	return &memMetricsRepo{daily: map[string]*models.DailyMetrics{}}
}

func (r *memMetricsRepo) AppendEvent(ctx context.Context, event models.PaymentEvent) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, event)
	return nil
}

func (r *memMetricsRepo) IncrementDaily(ctx context.Context, date, counter string, amount float64) error {
	row, ok := r.daily[date]
	if !ok {
		row = &models.DailyMetrics{Date: date}
		r.daily[date] = row
	}
	switch counter {
	case "created":
		row.Created++
	case "successful":
		row.Successful++
	case "failed":
		row.Failed++
	case "verified":
		row.Verified++
	case "rejected":
		row.Rejected++
	}
	row.TotalAmount += amount
	return nil
}

func (r *memMetricsRepo) GetDailyRange(ctx context.Context, from, to string) ([]models.DailyMetrics, error) {
	return r.rangeRows, nil
}

func (r *memMetricsRepo) EventsSince(ctx context.Context, since time.Time, eventType string) ([]models.PaymentEvent, error) {
	var out []models.PaymentEvent
	for _, ev := range r.events {
		if ev.Timestamp.After(since) && (eventType == "" || ev.EventType == eventType) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// memBookingRepo provides only the stalled-proof slice used by the engine.
type memBookingRepo struct {
	stalled []models.Booking
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (r *memBookingRepo) MarkPaid(ctx context.Context, id string, meta bookingRepo.PaidMeta) (bool, error) {
	return false, nil
}

func (r *memBookingRepo) MarkRejected(ctx context.Context, id string, reason string) (bool, error) {
	return false, nil
}

func (r *memBookingRepo) SetProofUploaded(ctx context.Context, id string, url string, at time.Time) error {
	return nil
}

func (r *memBookingRepo) FindStalledProofs(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return r.stalled, nil
}

func newTestEngine() (*Engine, *memMetricsRepo, *memBookingRepo) {
	metrics := newMemMetricsRepo()
	bookings := &memBookingRepo{}
	return &Engine{Repo: metrics, Bookings: bookings, Logger: zap.NewNop()}, metrics, bookings
}

func TestTrackEventIncrementsTheRightCounter(t *testing.T) {
	ctx := context.Background()
	engine, metrics, _ := newTestEngine()
	today := time.Now().Format("2006-01-02")

	engine.TrackEvent(ctx, models.PaymentEvent{EventType: models.EventPaymentCreated, BookingID: "b-1", Amount: 1000})
	engine.TrackEvent(ctx, models.PaymentEvent{EventType: models.EventPaymentSuccess, BookingID: "b-1", Amount: 1000})
	engine.TrackEvent(ctx, models.PaymentEvent{EventType: models.EventPaymentFailed, BookingID: "b-2", Amount: 500})

	require.Len(t, metrics.events, 3)
	row := metrics.daily[today]
	require.NotNil(t, row)
	assert.Equal(t, int64(1), row.Created)
	assert.Equal(t, int64(1), row.Successful)
	assert.Equal(t, int64(1), row.Failed)
	// Only created events contribute to the summed amount.
	assert.Equal(t, 1000.0, row.TotalAmount)
}

func TestTrackEventSwallowsRepoFailures(t *testing.T) {
	engine, metrics, _ := newTestEngine()
	metrics.appendErr = assert.AnError

	// Must not panic or propagate; telemetry outages never fail a payment.
	engine.TrackEvent(context.Background(), models.PaymentEvent{EventType: models.EventPaymentCreated})
	assert.Empty(t, metrics.events)
}

func TestGetMetricsDerivations(t *testing.T) {
	engine, metrics, _ := newTestEngine()
	metrics.rangeRows = []models.DailyMetrics{
		{Date: "2026-08-01", Created: 10, Successful: 7, Failed: 2, Rejected: 1, TotalAmount: 12000},
		{Date: "2026-08-02", Created: 10, Successful: 9, Failed: 1, TotalAmount: 8000},
	}

	summary, err := engine.GetMetrics(context.Background(), "2026-08-01", "2026-08-02")
	require.NoError(t, err)
	assert.Equal(t, int64(20), summary.Created)
	assert.Equal(t, int64(16), summary.Successful)
	assert.Equal(t, int64(3), summary.Failed)
	assert.InDelta(t, 0.8, summary.SuccessRate, 1e-9)
	assert.InDelta(t, 1000.0, summary.AverageAmount, 1e-9)
}

func TestGetMetricsEmptyRange(t *testing.T) {
	engine, _, _ := newTestEngine()

	summary, err := engine.GetMetrics(context.Background(), "2026-08-01", "2026-08-02")
	require.NoError(t, err)
	assert.Zero(t, summary.Created)
	assert.Zero(t, summary.SuccessRate)
	assert.Zero(t, summary.AverageAmount)
}
