package payment

import (
	"context"
	"fmt"

	"serbisyo/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// CardGateway is the order-capture adapter: a PaymentIntent is created with
// manual capture, the client authorizes it, and HandleResult captures the
// authorized amount.
type CardGateway struct {
	Finalizer *Finalizer
	Logger    *zap.Logger
}

func NewCardGateway(finalizer *Finalizer, logger *zap.Logger) *CardGateway {
	return &CardGateway{Finalizer: finalizer, Logger: logger}
}

func (g *CardGateway) Method() string { return models.PaymentMethodCard }

// CreatePayment creates a manual-capture PaymentIntent referencing the
// booking and returns its client secret as the session reference.
func (g *CardGateway) CreatePayment(ctx context.Context, req models.PaymentRequest) (models.GatewayResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(string(stripe.CurrencyPHP)),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String(req.Description),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("user_id", req.UserID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return models.GatewayResult{Error: "Failed to initiate card payment"}, wrapStripeErr(err)
	}

	return models.GatewayResult{
		Success:    true,
		SessionRef: intent.ID,
	}, nil
}

// HandleResult fetches the intent, captures it if the client's authorization
// is holding, and finalizes the terminal outcome. Re-invocation with an
// already-captured intent is a no-op via the finalizer's idempotency check.
func (g *CardGateway) HandleResult(ctx context.Context, booking *models.Booking, providerRef string) error {
	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx
	intent, err := paymentintent.Get(providerRef, getParams)
	if err != nil {
		return wrapStripeErr(err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusRequiresCapture:
		captureParams := &stripe.PaymentIntentCaptureParams{}
		captureParams.Context = ctx
		captured, err := paymentintent.Capture(providerRef, captureParams)
		if err != nil {
			return wrapStripeErr(err)
		}
		if captured.Status != stripe.PaymentIntentStatusSucceeded {
			return NewGatewayError(fmt.Sprintf("Card capture ended in status %s", captured.Status))
		}
		return g.Finalizer.CompletePayment(ctx, booking, booking.Price, g.Method(), providerRef, "system")

	case stripe.PaymentIntentStatusSucceeded:
		return g.Finalizer.CompletePayment(ctx, booking, booking.Price, g.Method(), providerRef, "system")

	case stripe.PaymentIntentStatusCanceled:
		return g.Finalizer.RejectPayment(ctx, booking, booking.Price, g.Method(), providerRef,
			"Card payment was cancelled", models.EventPaymentFailed)

	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		// The authorization was declined; the intent wants a new card.
		if intent.LastPaymentError != nil {
			return g.Finalizer.RejectPayment(ctx, booking, booking.Price, g.Method(), providerRef,
				fmt.Sprintf("Card declined: %s", intent.LastPaymentError.Msg), models.EventPaymentFailed)
		}
		return NewGatewayError("Card payment has not been authorized yet")

	default:
		g.Logger.Info("card payment not yet terminal",
			zap.String("intentId", providerRef), zap.String("status", string(intent.Status)))
		return NewGatewayError(fmt.Sprintf("Card payment is still %s", intent.Status))
	}
}

// wrapStripeErr marks provider-side and network failures transient while
// passing card declines through untouched.
func wrapStripeErr(err error) error {
	if stripeErr, ok := err.(*stripe.Error); ok {
		if stripeErr.HTTPStatusCode >= 500 || stripeErr.HTTPStatusCode == 429 {
			return MarkTransient(err)
		}
		return err
	}
	return MarkTransient(err)
}
