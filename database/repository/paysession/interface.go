package paysessionRepo

import (
	"context"
	"errors"

	"serbisyo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a booking has no payment session.
var ErrNotFound = errors.New("payment session not found")

// PaymentSessionRepository stores the one-per-booking payment session.
type PaymentSessionRepository interface {
	Get(ctx context.Context, bookingID string) (*models.PaymentSession, error)
	// Upsert replaces the session keyed by booking ID. The session guard is
	// responsible for refusing to replace a still-active session.
	Upsert(ctx context.Context, session models.PaymentSession) error
	// UpdateStatus moves a session to the given status, recording a failure
	// reason when one applies. It reports false when the session was not in
	// pending, so callers can treat re-delivery as a no-op.
	UpdateStatus(ctx context.Context, bookingID, status, failureReason string) (bool, error)
}

type mongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo returns a PaymentSessionRepository backed by MongoDB.
func NewMongoSessionRepo(db *mongo.Database) PaymentSessionRepository {
	return &mongoSessionRepo{coll: db.Collection("payment_sessions")}
}
