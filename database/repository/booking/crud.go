package bookingRepo

import (
	"context"
	"errors"
	"time"

	"serbisyo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetByID returns a booking by its ID.
func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// MarkPaid transitions a booking to Upcoming, but only while it is still in
// PendingPayment. The status filter makes re-delivery a no-op.
func (r *mongoBookingRepo) MarkPaid(ctx context.Context, id string, meta PaidMeta) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.BookingStatusPendingPayment},
		bson.M{"$set": bson.M{
			"status":              models.BookingStatusUpcoming,
			"payment_method":      meta.Method,
			"gateway_reference":   meta.GatewayRef,
			"payment_verified_at": meta.VerifiedAt,
			"payment_verified_by": meta.VerifiedBy,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// MarkRejected transitions a booking to PaymentRejected with a reason, only
// while it is still in PendingPayment.
func (r *mongoBookingRepo) MarkRejected(ctx context.Context, id string, reason string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.BookingStatusPendingPayment},
		bson.M{"$set": bson.M{
			"status":           models.BookingStatusPaymentRejected,
			"rejection_reason": reason,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetProofUploaded records a proof-of-payment upload against the booking.
func (r *mongoBookingRepo) SetProofUploaded(ctx context.Context, id string, url string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"proof_url": url, "proof_uploaded_at": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindStalledProofs returns PendingPayment bookings with a proof uploaded
// before the cutoff and still unverified.
func (r *mongoBookingRepo) FindStalledProofs(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"status":            models.BookingStatusPendingPayment,
		"proof_uploaded_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
