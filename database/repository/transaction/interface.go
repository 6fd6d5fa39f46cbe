package transactionRepo

import (
	"context"

	"serbisyo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionRepository is the append-oriented ledger store. Completed
// entries are never mutated.
type TransactionRepository interface {
	Create(ctx context.Context, tx models.Transaction) (string, error)
	// FindLatestByPayment returns the newest pending or completed transaction
	// matching the (booking, amount, method) tuple, or nil when none exists.
	FindLatestByPayment(ctx context.Context, bookingID string, amount float64, method string) (*models.Transaction, error)
	// HasCompletedPayment reports whether a completed booking_payment entry
	// already exists for the booking.
	HasCompletedPayment(ctx context.Context, bookingID string) (bool, error)
	GetByBookingID(ctx context.Context, bookingID string) ([]models.Transaction, error)
}

type mongoTransactionRepo struct {
	coll *mongo.Collection
}

// NewMongoTransactionRepo returns a TransactionRepository backed by MongoDB.
func NewMongoTransactionRepo(db *mongo.Database) TransactionRepository {
	return &mongoTransactionRepo{coll: db.Collection("transactions")}
}
