package metricsRepo

import (
	"context"
	"time"

	"serbisyo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MetricsRepository stores payment telemetry: the append-only event log and
// the per-day aggregate counters.
type MetricsRepository interface {
	AppendEvent(ctx context.Context, event models.PaymentEvent) error
	// IncrementDaily atomically bumps one counter (and the summed amount) on
	// the given date's row, creating the row when absent.
	IncrementDaily(ctx context.Context, date, counter string, amount float64) error
	GetDailyRange(ctx context.Context, from, to string) ([]models.DailyMetrics, error)
	// EventsSince returns events of the given type newer than the cutoff;
	// an empty eventType matches all.
	EventsSince(ctx context.Context, since time.Time, eventType string) ([]models.PaymentEvent, error)
}

type mongoMetricsRepo struct {
	events *mongo.Collection
	daily  *mongo.Collection
}

// NewMongoMetricsRepo returns a MetricsRepository backed by MongoDB.
func NewMongoMetricsRepo(db *mongo.Database) MetricsRepository {
	return &mongoMetricsRepo{
		events: db.Collection("payment_events"),
		daily:  db.Collection("daily_metrics"),
	}
}
