package notification

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypePaymentNotify is the asynq task type for payment outcome pushes.
const TypePaymentNotify = "payment:notify"

// PaymentNotifyPayload is the task payload consumed by the notification
// worker.
type PaymentNotifyPayload struct {
	BookingID string  `json:"bookingId"`
	UserID    string  `json:"userId"`
	Outcome   string  `json:"outcome"` // "success" or "failure"
	Amount    float64 `json:"amount,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// AsynqNotifier publishes payment outcomes onto the notification queue after
// the payment-state transition has committed. Enqueue failures are logged and
// swallowed so they can never be mistaken for payment failures.
type AsynqNotifier struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewAsynqNotifier(client *asynq.Client, logger *zap.Logger) *AsynqNotifier {
	return &AsynqNotifier{Client: client, Logger: logger}
}

func (n *AsynqNotifier) enqueue(payload PaymentNotifyPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.Logger.Error("failed to marshal notification payload", zap.Error(err))
		return
	}
	task := asynq.NewTask(TypePaymentNotify, data)
	if _, err := n.Client.Enqueue(task, asynq.MaxRetry(5)); err != nil {
		n.Logger.Error("failed to enqueue payment notification",
			zap.String("bookingId", payload.BookingID), zap.Error(err))
	}
}

func (n *AsynqNotifier) NotifyPaymentSuccess(ctx context.Context, bookingID, userID string, amount float64) {
	n.enqueue(PaymentNotifyPayload{
		BookingID: bookingID,
		UserID:    userID,
		Outcome:   "success",
		Amount:    amount,
	})
}

func (n *AsynqNotifier) NotifyPaymentFailure(ctx context.Context, bookingID, userID, reason string) {
	n.enqueue(PaymentNotifyPayload{
		BookingID: bookingID,
		UserID:    userID,
		Outcome:   "failure",
		Reason:    reason,
	})
}
