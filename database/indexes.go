package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the payment core relies on. The partial
// unique index on completed booking-payment transactions is the storage-level
// guard against double-crediting a booking; the time-windowed duplicate check
// alone cannot close the check-then-act race.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	txIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_completed_booking_payment").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": "completed",
					"type":   "booking_payment",
				}),
		},
		{
			Keys: bson.D{
				{Key: "booking_id", Value: 1},
				{Key: "amount", Value: 1},
				{Key: "payment_method", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("duplicate_lookup"),
		},
	}
	if _, err := db.Collection("transactions").Indexes().CreateMany(ctx, txIndexes); err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}

	sessionIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().SetName("uniq_session_booking").SetUnique(true),
	}
	if _, err := db.Collection("payment_sessions").Indexes().CreateOne(ctx, sessionIndex); err != nil {
		return fmt.Errorf("failed to create payment session index: %w", err)
	}

	eventIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("event_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("event_type_timestamp"),
		},
	}
	if _, err := db.Collection("payment_events").Indexes().CreateMany(ctx, eventIndexes); err != nil {
		return fmt.Errorf("failed to create payment event indexes: %w", err)
	}

	metricsIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetName("uniq_metrics_date").SetUnique(true),
	}
	if _, err := db.Collection("daily_metrics").Indexes().CreateOne(ctx, metricsIndex); err != nil {
		return fmt.Errorf("failed to create daily metrics index: %w", err)
	}

	return nil
}
