package models

import "time"

// Transaction types.
const (
	TransactionTypeBookingPayment = "booking_payment"
	TransactionTypePayoutRequest  = "payout_request"
	TransactionTypeRefund         = "refund"
	TransactionTypeCommission     = "commission"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is an immutable ledger entry for a money movement. Entries are
// never mutated once completed.
type Transaction struct {
	ID               string     `bson:"id" json:"id"`
	BookingID        string     `bson:"booking_id" json:"booking_id"`
	ClientID         string     `bson:"client_id" json:"client_id"`
	ProviderID       string     `bson:"provider_id" json:"provider_id"`
	Amount           float64    `bson:"amount" json:"amount"`
	Type             string     `bson:"type" json:"type"`
	Status           string     `bson:"status" json:"status"`
	PaymentMethod    string     `bson:"payment_method" json:"payment_method"`
	GatewayReference string     `bson:"gateway_reference,omitempty" json:"gateway_reference,omitempty"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	VerifiedAt       *time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}
