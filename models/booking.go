package models

import "time"

// Booking statuses relevant to the payment core. The booking subsystem owns
// the record; this core only reads it and performs the paid/rejected
// transitions.
const (
	BookingStatusPendingPayment  = "PendingPayment"
	BookingStatusUpcoming        = "Upcoming"
	BookingStatusPaymentRejected = "PaymentRejected"
	BookingStatusCompleted       = "Completed"
	BookingStatusCancelled       = "Cancelled"
)

// Booking represents a client-provider service engagement record.
type Booking struct {
	ID         string    `bson:"id" json:"id"`                   // Unique booking identifier (UUID)
	ClientID   string    `bson:"client_id" json:"client_id"`     // User paying for the booking
	ProviderID string    `bson:"provider_id" json:"provider_id"` // Provider being booked
	Price      float64   `bson:"price" json:"price"`             // Agreed price in PHP
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`

	// Payment verification metadata, written only by the gateway finalizer.
	PaymentMethod     string     `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	GatewayReference  string     `bson:"gateway_reference,omitempty" json:"gateway_reference,omitempty"`
	PaymentVerifiedAt *time.Time `bson:"payment_verified_at,omitempty" json:"payment_verified_at,omitempty"`
	PaymentVerifiedBy string     `bson:"payment_verified_by,omitempty" json:"payment_verified_by,omitempty"`
	RejectionReason   string     `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	// Proof-of-payment upload, set by the storage handler for wallet payments
	// pending manual verification.
	ProofUploadedAt *time.Time `bson:"proof_uploaded_at,omitempty" json:"proof_uploaded_at,omitempty"`
	ProofURL        string     `bson:"proof_url,omitempty" json:"proof_url,omitempty"`
}
