package metricsRepo

import (
	"context"
	"time"

	"serbisyo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AppendEvent inserts a telemetry record into the event log.
func (r *mongoMetricsRepo) AppendEvent(ctx context.Context, event models.PaymentEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := r.events.InsertOne(ctx, event)
	return err
}

// IncrementDaily bumps the named counter on the date's aggregate row with an
// atomic $inc upsert, so concurrent writers never lose increments.
func (r *mongoMetricsRepo) IncrementDaily(ctx context.Context, date, counter string, amount float64) error {
	_, err := r.daily.UpdateOne(ctx,
		bson.M{"date": date},
		bson.M{"$inc": bson.M{counter: 1, "total_amount": amount}},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetDailyRange returns the aggregate rows for dates in [from, to].
func (r *mongoMetricsRepo) GetDailyRange(ctx context.Context, from, to string) ([]models.DailyMetrics, error) {
	cursor, err := r.daily.Find(ctx, bson.M{"date": bson.M{"$gte": from, "$lte": to}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.DailyMetrics
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// EventsSince returns events newer than the cutoff, optionally filtered by
// type.
func (r *mongoMetricsRepo) EventsSince(ctx context.Context, since time.Time, eventType string) ([]models.PaymentEvent, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": since}}
	if eventType != "" {
		filter["event_type"] = eventType
	}
	cursor, err := r.events.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.PaymentEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
