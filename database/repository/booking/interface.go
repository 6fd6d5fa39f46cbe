package bookingRepo

import (
	"context"
	"errors"
	"time"

	"serbisyo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no booking matches the given ID.
var ErrNotFound = errors.New("booking not found")

// PaidMeta carries the verification metadata written alongside the paid
// transition.
type PaidMeta struct {
	Method     string
	GatewayRef string
	VerifiedBy string
	VerifiedAt time.Time
}

// BookingRepository exposes the payment-relevant slice of the booking
// collection. The booking subsystem owns everything else.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// MarkPaid conditionally transitions a PendingPayment booking to Upcoming.
	// It reports false when the booking was not in PendingPayment, which the
	// caller treats as an already-applied (idempotent) transition.
	MarkPaid(ctx context.Context, id string, meta PaidMeta) (bool, error)
	// MarkRejected conditionally transitions a PendingPayment booking to
	// PaymentRejected with a reason.
	MarkRejected(ctx context.Context, id string, reason string) (bool, error)
	SetProofUploaded(ctx context.Context, id string, url string, at time.Time) error
	// FindStalledProofs returns PendingPayment bookings whose proof was
	// uploaded before the cutoff and never verified.
	FindStalledProofs(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by MongoDB.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{coll: db.Collection("bookings")}
}
