package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"serbisyo/config"
	paysessionRepo "serbisyo/database/repository/paysession"
	"serbisyo/models"

	"go.uber.org/zap"
)

// SessionGuard enforces the bounded-lifetime payment session per booking:
// one active session at a time, and terminal statuses are permanent.
type SessionGuard struct {
	Sessions paysessionRepo.PaymentSessionRepository
	Logger   *zap.Logger
}

// ValidateSession checks the booking's session and returns a distinct error
// for each way it can be unusable, so a client can tell "already paid" from
// "payment failed, retry".
func (g *SessionGuard) ValidateSession(ctx context.Context, bookingID string) models.SessionCheckResult {
	session, err := g.Sessions.Get(ctx, bookingID)
	if errors.Is(err, paysessionRepo.ErrNotFound) {
		return models.SessionCheckResult{Error: "Payment session not found"}
	}
	if err != nil {
		g.Logger.Error("session lookup failed", zap.String("bookingId", bookingID), zap.Error(err))
		return models.SessionCheckResult{Error: "Failed to validate payment session"}
	}

	switch session.Status {
	case models.SessionStatusCompleted:
		return models.SessionCheckResult{Error: "Payment already completed for this booking", Session: session}
	case models.SessionStatusFailed:
		return models.SessionCheckResult{Error: "Previous payment attempt failed; start a new payment", Session: session}
	case models.SessionStatusCancelled:
		return models.SessionCheckResult{Error: "Payment session was cancelled", Session: session}
	}

	if !config.IsSessionValid(session.CreatedAt) {
		return models.SessionCheckResult{Error: "Payment session has expired", Session: session}
	}
	return models.SessionCheckResult{Valid: true, Session: session}
}

// EnsureNoActive fails when the booking already has an active (pending,
// unexpired) or completed session. Used as the entry gate before a gateway
// checkout is initiated.
func (g *SessionGuard) EnsureNoActive(ctx context.Context, bookingID string) error {
	existing, err := g.Sessions.Get(ctx, bookingID)
	if errors.Is(err, paysessionRepo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check existing session: %w", err)
	}
	if existing.Status == models.SessionStatusCompleted {
		return NewSessionError("Payment already completed for this booking")
	}
	if existing.Status == models.SessionStatusPending && config.IsSessionValid(existing.CreatedAt) {
		return NewSessionError("An active payment session already exists for this booking")
	}
	return nil
}

// Begin stores a fresh pending session for the booking. It refuses while an
// active (pending, unexpired) session exists; expired or terminal sessions
// are replaced.
func (g *SessionGuard) Begin(ctx context.Context, session models.PaymentSession) error {
	existing, err := g.Sessions.Get(ctx, session.BookingID)
	if err != nil && !errors.Is(err, paysessionRepo.ErrNotFound) {
		return fmt.Errorf("failed to check existing session: %w", err)
	}
	if existing != nil && existing.Status == models.SessionStatusPending && config.IsSessionValid(existing.CreatedAt) {
		return NewSessionError("An active payment session already exists for this booking")
	}
	if existing != nil && existing.Status == models.SessionStatusCompleted {
		return NewSessionError("Payment already completed for this booking")
	}

	session.Status = models.SessionStatusPending
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if err := g.Sessions.Upsert(ctx, session); err != nil {
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	return nil
}

// Cancel marks the booking owner's pending session cancelled. Best effort: it
// does not attempt to void an in-flight provider-side authorization.
func (g *SessionGuard) Cancel(ctx context.Context, bookingID, userID string) error {
	session, err := g.Sessions.Get(ctx, bookingID)
	if errors.Is(err, paysessionRepo.ErrNotFound) {
		return NewSessionError("Payment session not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load payment session: %w", err)
	}
	if session.UserID != userID {
		return NewSessionError("Unauthorized access to payment session")
	}
	if session.Status != models.SessionStatusPending {
		return NewSessionError(fmt.Sprintf("Payment session is already %s", session.Status))
	}

	ok, err := g.Sessions.UpdateStatus(ctx, bookingID, models.SessionStatusCancelled, "cancelled by user")
	if err != nil {
		return fmt.Errorf("failed to cancel payment session: %w", err)
	}
	if !ok {
		return NewSessionError("Payment session is no longer pending")
	}
	return nil
}
