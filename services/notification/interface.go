package notification

import "context"

// PaymentNotifier delivers payment outcome notifications. Calls are
// fire-and-forget from the payment core's point of view: a transport failure
// is logged by the implementation and never propagated into the payment path.
type PaymentNotifier interface {
	NotifyPaymentSuccess(ctx context.Context, bookingID, userID string, amount float64)
	NotifyPaymentFailure(ctx context.Context, bookingID, userID, reason string)
}
