package payment

import (
	"context"
	"fmt"
	"time"

	"serbisyo/database"
	bookingRepo "serbisyo/database/repository/booking"
	paysessionRepo "serbisyo/database/repository/paysession"
	transactionRepo "serbisyo/database/repository/transaction"
	"serbisyo/models"
	"serbisyo/services/monitor"
	"serbisyo/services/notification"

	"go.uber.org/zap"
)

// Finalizer applies the terminal outcome of a payment as one atomic batch:
// booking transition, ledger entry, and session status move together or not
// at all. Partial application is the single biggest correctness risk in this
// subsystem.
type Finalizer struct {
	Txn          database.TxnRunner
	Bookings     bookingRepo.BookingRepository
	Transactions transactionRepo.TransactionRepository
	Sessions     paysessionRepo.PaymentSessionRepository
	Monitor      *monitor.Engine
	Notifier     notification.PaymentNotifier
	Logger       *zap.Logger
}

// CompletePayment commits a terminal success: booking to Upcoming with
// verification metadata, a completed ledger entry, session completed. Safe to
// invoke more than once with the same outcome; re-delivery is detected by the
// completed ledger entry and becomes a no-op.
func (f *Finalizer) CompletePayment(ctx context.Context, booking *models.Booking, amount float64, method, gatewayRef, verifiedBy string) error {
	now := time.Now()
	alreadyDone := false

	err := f.Txn.WithTransaction(ctx, func(txCtx context.Context) error {
		done, err := f.Transactions.HasCompletedPayment(txCtx, booking.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing payment: %w", err)
		}
		if done {
			alreadyDone = true
			return nil
		}

		ok, err := f.Bookings.MarkPaid(txCtx, booking.ID, bookingRepo.PaidMeta{
			Method:     method,
			GatewayRef: gatewayRef,
			VerifiedBy: verifiedBy,
			VerifiedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to mark booking paid: %w", err)
		}
		if !ok {
			return NewGatewayError(fmt.Sprintf("Booking %s is no longer pending payment", booking.ID))
		}

		if _, err := f.Transactions.Create(txCtx, models.Transaction{
			BookingID:        booking.ID,
			ClientID:         booking.ClientID,
			ProviderID:       booking.ProviderID,
			Amount:           amount,
			Type:             models.TransactionTypeBookingPayment,
			Status:           models.TransactionStatusCompleted,
			PaymentMethod:    method,
			GatewayReference: gatewayRef,
			CreatedAt:        now,
			VerifiedAt:       &now,
		}); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		if _, err := f.Sessions.UpdateStatus(txCtx, booking.ID, models.SessionStatusCompleted, ""); err != nil {
			return fmt.Errorf("failed to complete payment session: %w", err)
		}
		return nil
	})
	if err != nil {
		// A failure inside the batch risks a booking/ledger mismatch only if
		// partially applied; the transaction prevents that, so this is loud
		// but safe to surface.
		f.Logger.Error("payment completion batch failed",
			zap.String("bookingId", booking.ID), zap.Error(err))
		return err
	}
	if alreadyDone {
		f.Logger.Info("payment already completed, skipping re-delivery",
			zap.String("bookingId", booking.ID), zap.String("gatewayRef", gatewayRef))
		return nil
	}

	// Side effects after commit; their failure never rolls back the payment.
	eventType := models.EventPaymentSuccess
	if verifiedBy != "system" {
		eventType = models.EventPaymentVerified
	}
	f.Monitor.TrackEvent(ctx, models.PaymentEvent{
		EventType:     eventType,
		BookingID:     booking.ID,
		UserID:        booking.ClientID,
		Amount:        amount,
		PaymentMethod: method,
		Metadata:      map[string]string{"gatewayRef": gatewayRef, "verifiedBy": verifiedBy},
	})
	f.Notifier.NotifyPaymentSuccess(ctx, booking.ID, booking.ClientID, amount)
	return nil
}

// RejectPayment commits a terminal failure: booking to PaymentRejected with a
// reason and session failed, in one batch. Idempotent for the same outcome.
// eventType distinguishes gateway failures (payment_failed) from explicit
// rejections (payment_rejected) in the telemetry.
func (f *Finalizer) RejectPayment(ctx context.Context, booking *models.Booking, amount float64, method, gatewayRef, reason, eventType string) error {
	alreadyTerminal := false

	err := f.Txn.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := f.Bookings.MarkRejected(txCtx, booking.ID, reason)
		if err != nil {
			return fmt.Errorf("failed to mark booking rejected: %w", err)
		}
		if !ok {
			alreadyTerminal = true
			return nil
		}
		if _, err := f.Sessions.UpdateStatus(txCtx, booking.ID, models.SessionStatusFailed, reason); err != nil {
			return fmt.Errorf("failed to fail payment session: %w", err)
		}
		return nil
	})
	if err != nil {
		f.Logger.Error("payment rejection batch failed",
			zap.String("bookingId", booking.ID), zap.Error(err))
		return err
	}
	if alreadyTerminal {
		f.Logger.Info("booking already terminal, skipping rejection re-delivery",
			zap.String("bookingId", booking.ID))
		return nil
	}

	f.Monitor.TrackEvent(ctx, models.PaymentEvent{
		EventType:     eventType,
		BookingID:     booking.ID,
		UserID:        booking.ClientID,
		Amount:        amount,
		PaymentMethod: method,
		Metadata:      map[string]string{"gatewayRef": gatewayRef, "reason": reason},
	})
	f.Notifier.NotifyPaymentFailure(ctx, booking.ID, booking.ClientID, reason)
	return nil
}
