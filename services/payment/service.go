package payment

import (
	"context"
	"errors"
	"fmt"

	"serbisyo/config"
	bookingRepo "serbisyo/database/repository/booking"
	paysessionRepo "serbisyo/database/repository/paysession"
	"serbisyo/models"
	"serbisyo/services/monitor"

	"go.uber.org/zap"
)

// DefaultPaymentService wires the validator, session guard, gateway adapters
// and finalizer into the request flow.
type DefaultPaymentService struct {
	Cfg       *config.Config
	Validator *Validator
	Guard     *SessionGuard
	Bookings  bookingRepo.BookingRepository
	Sessions  paysessionRepo.PaymentSessionRepository
	Adapters  map[string]GatewayAdapter
	Checkout  WebhookGateway
	Finalizer *Finalizer
	Retry     RetryPolicy
	Monitor   *monitor.Engine
	Logger    *zap.Logger
}

// InitiatePayment runs the full front door: one active session per booking,
// every validation rule, then the provider create call under the retry
// policy, and finally the session write and created event.
func (s *DefaultPaymentService) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if err := s.Guard.EnsureNoActive(ctx, req.BookingID); err != nil {
		return nil, err
	}

	result := s.Validator.ValidatePayment(ctx, req.BookingID, req.UserID, req.Amount, req.Method, req.File)
	if !result.Valid {
		s.Monitor.TrackEvent(ctx, models.PaymentEvent{
			EventType:     models.EventPaymentRejected,
			BookingID:     req.BookingID,
			UserID:        req.UserID,
			Amount:        req.Amount,
			PaymentMethod: req.Method,
			Metadata:      map[string]string{"reason": result.Error},
		})
		return nil, NewValidationError(result.Error)
	}

	adapter, ok := s.Adapters[req.Method]
	if !ok {
		return nil, NewValidationError("Unknown payment method")
	}

	gatewayReq := models.PaymentRequest{
		BookingID:   req.BookingID,
		UserID:      req.UserID,
		AmountMinor: PesosToMinor(req.Amount),
		Currency:    "PHP",
		Description: fmt.Sprintf("Serbisyo booking %s", req.BookingID),
		SuccessURL:  fmt.Sprintf("%s/api/payments/%s/callback?outcome=success", s.Cfg.PublicBaseURL, req.BookingID),
		CancelURL:   fmt.Sprintf("%s/api/payments/%s/callback?outcome=cancel", s.Cfg.PublicBaseURL, req.BookingID),
	}

	var gatewayRes models.GatewayResult
	retryRes := s.Retry.Execute(ctx, func(ctx context.Context) error {
		var err error
		gatewayRes, err = adapter.CreatePayment(ctx, gatewayReq)
		return err
	})
	if !retryRes.Success {
		s.Logger.Error("gateway create failed",
			zap.String("bookingId", req.BookingID),
			zap.String("method", req.Method),
			zap.Int("attempts", retryRes.Attempts),
			zap.Error(retryRes.Err))
		s.Monitor.TrackEvent(ctx, models.PaymentEvent{
			EventType:     models.EventPaymentFailed,
			BookingID:     req.BookingID,
			UserID:        req.UserID,
			Amount:        req.Amount,
			PaymentMethod: req.Method,
			Metadata:      map[string]string{"stage": "create"},
		})
		if pe, ok := IsPaymentError(retryRes.Err); ok {
			return nil, pe
		}
		return nil, NewGatewayError("Failed to process payment. Please try again later")
	}

	session := models.PaymentSession{
		BookingID:        req.BookingID,
		UserID:           req.UserID,
		Amount:           req.Amount,
		Method:           req.Method,
		GatewayReference: gatewayRes.SessionRef,
		RedirectURL:      gatewayRes.RedirectURL,
	}
	if err := s.Guard.Begin(ctx, session); err != nil {
		return nil, err
	}

	s.Monitor.TrackEvent(ctx, models.PaymentEvent{
		EventType:     models.EventPaymentCreated,
		BookingID:     req.BookingID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		PaymentMethod: req.Method,
		Metadata:      map[string]string{"gatewayRef": gatewayRes.SessionRef},
	})

	stored, err := s.Sessions.Get(ctx, req.BookingID)
	if err != nil {
		// The session was just written; fall back to the local copy.
		s.Logger.Warn("failed to re-read stored session", zap.Error(err))
		stored = &session
	}
	return &InitiateResponse{
		Session:     stored,
		RedirectURL: gatewayRes.RedirectURL,
		Warnings:    result.Warnings,
	}, nil
}

// GetPaymentStatus returns the booking owner's session.
func (s *DefaultPaymentService) GetPaymentStatus(ctx context.Context, bookingID, userID string) (*models.PaymentSession, error) {
	session, err := s.Sessions.Get(ctx, bookingID)
	if errors.Is(err, paysessionRepo.ErrNotFound) {
		return nil, NewSessionError("Payment session not found")
	}
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, NewSessionError("Unauthorized access to payment session")
	}
	return session, nil
}

// CancelPayment cancels the owner's pending session, best effort.
func (s *DefaultPaymentService) CancelPayment(ctx context.Context, bookingID, userID string) error {
	return s.Guard.Cancel(ctx, bookingID, userID)
}

// ConfirmRedirect resolves the authoritative provider status for the
// booking's session and applies the terminal outcome. The session must still
// be usable; an expired or terminal session is reported distinctly.
func (s *DefaultPaymentService) ConfirmRedirect(ctx context.Context, bookingID string) error {
	check := s.Guard.ValidateSession(ctx, bookingID)
	if !check.Valid {
		return NewSessionError(check.Error)
	}
	session := check.Session

	adapter, ok := s.Adapters[session.Method]
	if !ok {
		return NewValidationError("Unknown payment method")
	}
	if session.GatewayReference == "" {
		return NewGatewayError("Payment session has no provider reference")
	}

	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking: %w", err)
	}

	if err := adapter.HandleResult(ctx, booking, session.GatewayReference); err != nil {
		if pe, ok := IsPaymentError(err); ok {
			return pe
		}
		s.Logger.Error("redirect confirmation failed",
			zap.String("bookingId", bookingID), zap.Error(err))
		return NewGatewayError("Failed to confirm payment. Please try again later")
	}
	return nil
}

// HandleCheckoutWebhook rejects unverifiable webhooks before touching any
// state, then applies the event through the checkout adapter.
func (s *DefaultPaymentService) HandleCheckoutWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.Checkout.VerifyWebhookSignature(payload, signature) {
		return NewGatewayError("Invalid webhook signature")
	}
	return s.Checkout.ProcessWebhookEvent(ctx, payload)
}

// VerifyManualPayment settles a wallet payment from its reviewed proof.
func (s *DefaultPaymentService) VerifyManualPayment(ctx context.Context, bookingID, adminID string) error {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.ProofUploadedAt == nil {
		return NewValidationError("Booking has no proof of payment to verify")
	}

	method := models.PaymentMethodGCash
	gatewayRef := "manual"
	if session, err := s.Sessions.Get(ctx, bookingID); err == nil {
		method = session.Method
		if session.GatewayReference != "" {
			gatewayRef = session.GatewayReference
		}
	}
	return s.Finalizer.CompletePayment(ctx, booking, booking.Price, method, gatewayRef, adminID)
}

// RejectManualPayment rejects a wallet payment whose proof did not hold up.
func (s *DefaultPaymentService) RejectManualPayment(ctx context.Context, bookingID, adminID, reason string) error {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	method := models.PaymentMethodGCash
	if session, err := s.Sessions.Get(ctx, bookingID); err == nil {
		method = session.Method
	}
	return s.Finalizer.RejectPayment(ctx, booking, booking.Price, method, "manual",
		fmt.Sprintf("Rejected by %s: %s", adminID, reason), models.EventPaymentRejected)
}
