package payment

import (
	"context"
	"math"

	"serbisyo/models"
)

// GatewayAdapter translates between the internal payment model and one
// provider. Every adapter walks the same state machine: created, then either
// redirect-pending or direct-authorized, then captured or declined. Terminal
// states map to the Upcoming and PaymentRejected booking transitions via the
// Finalizer.
type GatewayAdapter interface {
	// Method names the payment method this adapter serves.
	Method() string
	// CreatePayment builds a provider-native request from the normalized
	// internal one and initiates the provider-side payment.
	CreatePayment(ctx context.Context, req models.PaymentRequest) (models.GatewayResult, error)
	// HandleResult pulls the authoritative status for the provider reference
	// and, on a terminal outcome, drives the atomic finalization.
	HandleResult(ctx context.Context, booking *models.Booking, providerRef string) error
}

// WebhookGateway is a GatewayAdapter whose terminal results arrive by push.
// An unverifiable webhook must be rejected before any state mutation.
type WebhookGateway interface {
	GatewayAdapter
	VerifyWebhookSignature(payload []byte, signature string) bool
	ProcessWebhookEvent(ctx context.Context, payload []byte) error
}

// PesosToMinor converts a PHP amount to centavos.
func PesosToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// MinorToPesos converts centavos back to a PHP amount.
func MinorToPesos(minor int64) float64 {
	return float64(minor) / 100
}
