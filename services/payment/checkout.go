package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"serbisyo/config"
	bookingRepo "serbisyo/database/repository/booking"
	"serbisyo/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// processedEventTTL bounds how long webhook event IDs are remembered for
// re-delivery detection.
const processedEventTTL = 24 * time.Hour

// DedupCache is the slice of the redis client the webhook dedup layer needs.
// *redis.Client satisfies it.
type DedupCache interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CheckoutGateway is the webhook-driven adapter: a hosted checkout session is
// created, the client pays on the provider's page, and the terminal outcome
// arrives as a signed webhook POST.
type CheckoutGateway struct {
	Cfg       config.CheckoutConfig
	Bookings  bookingRepo.BookingRepository
	Finalizer *Finalizer
	Cache     DedupCache
	Logger    *zap.Logger
	client    *http.Client
}

func NewCheckoutGateway(cfg config.CheckoutConfig, bookings bookingRepo.BookingRepository, finalizer *Finalizer, cache DedupCache, logger *zap.Logger) *CheckoutGateway {
	return &CheckoutGateway{
		Cfg:       cfg,
		Bookings:  bookings,
		Finalizer: finalizer,
		Cache:     cache,
		Logger:    logger,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *CheckoutGateway) Method() string { return models.PaymentMethodCheckout }

type checkoutSessionRequest struct {
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	Description string `json:"description,omitempty"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

type checkoutSessionResponse struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// checkoutWebhookEvent is the provider's webhook envelope.
type checkoutWebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"` // checkout.payment.paid | checkout.payment.failed | checkout.session.expired
	Data struct {
		SessionID   string `json:"session_id"`
		Reference   string `json:"reference"` // Booking ID
		AmountMinor int64  `json:"amount"`
		Reason      string `json:"reason,omitempty"`
	} `json:"data"`
}

// CreatePayment creates a hosted checkout session and returns its URL.
func (g *CheckoutGateway) CreatePayment(ctx context.Context, req models.PaymentRequest) (models.GatewayResult, error) {
	body := checkoutSessionRequest{
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Reference:   req.BookingID,
		Description: req.Description,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return models.GatewayResult{Error: "Failed to initiate checkout"}, fmt.Errorf("failed to encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Cfg.BaseURL+"/checkout_sessions", bytes.NewReader(data))
	if err != nil {
		return models.GatewayResult{Error: "Failed to initiate checkout"}, fmt.Errorf("failed to build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.Cfg.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return models.GatewayResult{Error: "Failed to initiate checkout"},
			MarkTransient(fmt.Errorf("checkout request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return models.GatewayResult{Error: "Failed to initiate checkout"},
			MarkTransient(fmt.Errorf("checkout provider returned status %d", resp.StatusCode))
	}

	var session checkoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return models.GatewayResult{Error: "Failed to initiate checkout"},
			fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := session.Error
		if msg == "" {
			msg = fmt.Sprintf("checkout provider rejected the request with status %d", resp.StatusCode)
		}
		return models.GatewayResult{Error: msg}, NewGatewayError(msg)
	}

	return models.GatewayResult{
		Success:     true,
		SessionRef:  session.ID,
		RedirectURL: session.CheckoutURL,
	}, nil
}

// HandleResult exists for parity with the pull-path adapters; the checkout
// provider only reports terminal outcomes by webhook.
func (g *CheckoutGateway) HandleResult(ctx context.Context, booking *models.Booking, providerRef string) error {
	return NewGatewayError("Checkout payments are confirmed by webhook only")
}

// VerifyWebhookSignature checks the HMAC-SHA256 hex signature over the raw
// payload with constant-time equality.
func (g *CheckoutGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.Cfg.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessWebhookEvent applies a verified webhook. Re-delivered events are
// dropped via the processed-event cache, and the finalizer's status prechecks
// make even a cache miss a no-op. The dedup key is released again when
// processing fails, so a transient store error does not swallow the
// provider's re-delivery for the key's whole TTL.
func (g *CheckoutGateway) ProcessWebhookEvent(ctx context.Context, payload []byte) error {
	var event checkoutWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return NewGatewayError("Malformed webhook payload")
	}
	if event.ID == "" || event.Data.Reference == "" {
		return NewGatewayError("Webhook event is missing identifiers")
	}

	dedupKey := "webhook:processed:" + event.ID
	fresh, cacheErr := g.Cache.SetNX(ctx, dedupKey, 1, processedEventTTL).Result()
	if cacheErr != nil {
		// Dedup cache down: proceed anyway, the finalizer stays idempotent.
		g.Logger.Warn("webhook dedup cache unavailable", zap.Error(cacheErr))
	} else if !fresh {
		g.Logger.Info("webhook event already processed", zap.String("eventId", event.ID))
		return nil
	}

	if err := g.applyWebhookEvent(ctx, event); err != nil {
		if cacheErr == nil {
			if delErr := g.Cache.Del(ctx, dedupKey).Err(); delErr != nil {
				g.Logger.Warn("failed to release webhook dedup key",
					zap.String("eventId", event.ID), zap.Error(delErr))
			}
		}
		return err
	}
	return nil
}

func (g *CheckoutGateway) applyWebhookEvent(ctx context.Context, event checkoutWebhookEvent) error {
	booking, err := g.Bookings.GetByID(ctx, event.Data.Reference)
	if err != nil {
		return fmt.Errorf("failed to load booking for webhook %s: %w", event.ID, err)
	}
	amount := MinorToPesos(event.Data.AmountMinor)

	switch event.Type {
	case "checkout.payment.paid":
		return g.Finalizer.CompletePayment(ctx, booking, amount, g.Method(), event.Data.SessionID, "system")
	case "checkout.payment.failed":
		reason := event.Data.Reason
		if reason == "" {
			reason = "Checkout payment failed"
		}
		return g.Finalizer.RejectPayment(ctx, booking, amount, g.Method(), event.Data.SessionID, reason,
			models.EventPaymentFailed)
	case "checkout.session.expired":
		return g.Finalizer.RejectPayment(ctx, booking, amount, g.Method(), event.Data.SessionID,
			"Checkout session expired", models.EventPaymentFailed)
	default:
		g.Logger.Info("ignoring webhook event type", zap.String("type", event.Type))
		return nil
	}
}
