package paysessionRepo

import (
	"context"
	"errors"
	"time"

	"serbisyo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Get returns the payment session for a booking.
func (r *mongoSessionRepo) Get(ctx context.Context, bookingID string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := r.coll.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Upsert replaces the session for the booking, keyed by booking_id.
func (r *mongoSessionRepo) Upsert(ctx context.Context, session models.PaymentSession) error {
	session.UpdatedAt = time.Now()
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"booking_id": session.BookingID},
		session,
		options.Replace().SetUpsert(true),
	)
	return err
}

// UpdateStatus moves a pending session to the given status. The pending
// filter keeps terminal statuses permanent.
func (r *mongoSessionRepo) UpdateStatus(ctx context.Context, bookingID, status, failureReason string) (bool, error) {
	set := bson.M{"status": status, "updated_at": time.Now()}
	if failureReason != "" {
		set["failure_reason"] = failureReason
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"booking_id": bookingID, "status": models.SessionStatusPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
