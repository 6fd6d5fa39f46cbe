package models

import "time"

// Supported payment methods.
const (
	PaymentMethodGCash    = "gcash"
	PaymentMethodCard     = "card"
	PaymentMethodCheckout = "checkout"
)

// PaymentSession statuses. A session is a time-boxed handle for one in-flight
// payment attempt against a booking; completed and failed are terminal.
const (
	SessionStatusPending   = "pending"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
	SessionStatusCancelled = "cancelled"
)

// PaymentSession records an in-flight payment attempt, one per booking.
type PaymentSession struct {
	BookingID        string    `bson:"booking_id" json:"booking_id"` // Key: at most one active session per booking
	UserID           string    `bson:"user_id" json:"user_id"`
	Amount           float64   `bson:"amount" json:"amount"`
	Method           string    `bson:"method" json:"method"`
	Status           string    `bson:"status" json:"status"`
	GatewayReference string    `bson:"gateway_reference,omitempty" json:"gateway_reference,omitempty"`
	RedirectURL      string    `bson:"redirect_url,omitempty" json:"redirect_url,omitempty"`
	FailureReason    string    `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// PaymentRequest is the normalized request handed to a gateway adapter after
// validation has passed.
type PaymentRequest struct {
	BookingID   string `json:"bookingId"`
	UserID      string `json:"userId"`
	AmountMinor int64  `json:"amountMinor"` // Amount in centavos
	Currency    string `json:"currency"`    // Always "PHP"
	Description string `json:"description,omitempty"`
	SuccessURL  string `json:"successUrl,omitempty"`
	CancelURL   string `json:"cancelUrl,omitempty"`
}

// GatewayResult is the outcome of a gateway create call.
type GatewayResult struct {
	Success     bool   `json:"success"`
	SessionRef  string `json:"sessionRef,omitempty"`  // Provider-side reference (source/intent/session id)
	RedirectURL string `json:"redirectUrl,omitempty"` // Where to send the client, if redirect-based
	Error       string `json:"error,omitempty"`
}

// ProofFile describes an uploaded proof-of-payment attachment. Only the
// metadata is validated here; blob storage is handled elsewhere.
type ProofFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// ValidationResult aggregates every violation found by the payment validator.
// Error joins all hard errors with "; "; warnings never block the payment.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// DuplicateCheckResult reports whether a matching transaction exists within
// the duplicate window. ExistingTransaction is populated whenever a match was
// found, even outside the window.
type DuplicateCheckResult struct {
	IsDuplicate         bool          `json:"isDuplicate"`
	ExistingTransaction *Transaction  `json:"existingTransaction,omitempty"`
	TimeDifference      time.Duration `json:"timeDifference,omitempty"`
}

// SessionCheckResult is the session guard's verdict on a booking's session.
type SessionCheckResult struct {
	Valid   bool            `json:"valid"`
	Error   string          `json:"error,omitempty"`
	Session *PaymentSession `json:"session,omitempty"`
}
