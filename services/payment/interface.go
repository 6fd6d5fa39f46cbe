package payment

import (
	"context"

	"serbisyo/models"
)

// InitiateRequest is one client payment attempt against a booking.
type InitiateRequest struct {
	BookingID string
	UserID    string
	Amount    float64
	Method    string
	File      *models.ProofFile
}

// InitiateResponse carries the stored session, the provider redirect target
// when the method is redirect-based, and any non-blocking warnings.
type InitiateResponse struct {
	Session     *models.PaymentSession `json:"session"`
	RedirectURL string                 `json:"redirectUrl,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// PaymentService orchestrates a payment attempt end to end: session gate,
// validation, gateway call, and terminal reconciliation.
type PaymentService interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	GetPaymentStatus(ctx context.Context, bookingID, userID string) (*models.PaymentSession, error)
	CancelPayment(ctx context.Context, bookingID, userID string) error
	// ConfirmRedirect is the pull path: invoked by the provider redirect
	// callback for gcash and by the client confirm step for card.
	ConfirmRedirect(ctx context.Context, bookingID string) error
	// HandleCheckoutWebhook is the push path: verifies the signature before
	// any state is touched, then applies the event.
	HandleCheckoutWebhook(ctx context.Context, payload []byte, signature string) error
	// VerifyManualPayment and RejectManualPayment settle wallet payments
	// whose proof-of-payment is reviewed by an admin.
	VerifyManualPayment(ctx context.Context, bookingID, adminID string) error
	RejectManualPayment(ctx context.Context, bookingID, adminID, reason string) error
}
