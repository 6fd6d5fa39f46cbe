package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"serbisyo/config"
	userRepo "serbisyo/database/repository/user"
	"serbisyo/services/notification"
	"serbisyo/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitNotificationWorker runs the async notification worker in background.
// It consumes payment outcome tasks enqueued after a terminal payment write
// and delivers FCM pushes; a delivery failure is retried by asynq but never
// touches payment state.
func InitNotificationWorker(cfg *config.Config, users userRepo.UserRepository, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypePaymentNotify, handlePaymentNotifyTask(users, logger))

	go func() {
		log.Println("[NotificationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handlePaymentNotifyTask(users userRepo.UserRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload notification.PaymentNotifyPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to decode notification payload: %w", err)
		}

		if utils.FCMClient == nil {
			logger.Info("push notifications disabled, dropping payment notification",
				zap.String("bookingId", payload.BookingID))
			return nil
		}

		user, err := users.GetByID(ctx, payload.UserID)
		if err != nil {
			return fmt.Errorf("failed to load user %s: %w", payload.UserID, err)
		}
		if user.FCMToken == "" {
			logger.Warn("user has no FCM token, dropping payment notification",
				zap.String("userId", payload.UserID))
			return nil
		}

		title, body := buildPaymentMessage(payload)
		msg := &messaging.Message{
			Token: user.FCMToken,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: map[string]string{
				"type":      "payment_" + payload.Outcome,
				"bookingId": payload.BookingID,
			},
		}

		if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to send FCM message: %w", err)
		}
		logger.Info("payment notification delivered",
			zap.String("bookingId", payload.BookingID), zap.String("outcome", payload.Outcome))
		return nil
	}
}

func buildPaymentMessage(p notification.PaymentNotifyPayload) (title, body string) {
	if p.Outcome == "success" {
		return "Payment received",
			fmt.Sprintf("Your payment of ₱%.2f for booking %s has been confirmed. See you soon!", p.Amount, p.BookingID)
	}
	reason := p.Reason
	if reason == "" {
		reason = "the payment could not be completed"
	}
	return "Payment failed",
		fmt.Sprintf("Your payment for booking %s did not go through: %s. You can try again from the app.", p.BookingID, reason)
}
