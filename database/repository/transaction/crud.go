package transactionRepo

import (
	"context"
	"errors"
	"time"

	"serbisyo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new ledger entry and returns its ID.
func (r *mongoTransactionRepo) Create(ctx context.Context, tx models.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, tx); err != nil {
		return "", err
	}
	return tx.ID, nil
}

// FindLatestByPayment returns the newest pending or completed transaction for
// the (booking, amount, method) tuple, newest first, limit 1.
func (r *mongoTransactionRepo) FindLatestByPayment(ctx context.Context, bookingID string, amount float64, method string) (*models.Transaction, error) {
	filter := bson.M{
		"booking_id":     bookingID,
		"amount":         amount,
		"payment_method": method,
		"status": bson.M{"$in": []string{
			models.TransactionStatusPending,
			models.TransactionStatusCompleted,
		}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var tx models.Transaction
	err := r.coll.FindOne(ctx, filter, opts).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// HasCompletedPayment reports whether the booking already has a completed
// booking_payment ledger entry.
func (r *mongoTransactionRepo) HasCompletedPayment(ctx context.Context, bookingID string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"booking_id": bookingID,
		"type":       models.TransactionTypeBookingPayment,
		"status":     models.TransactionStatusCompleted,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByBookingID fetches all ledger entries for a booking.
func (r *mongoTransactionRepo) GetByBookingID(ctx context.Context, bookingID string) ([]models.Transaction, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
