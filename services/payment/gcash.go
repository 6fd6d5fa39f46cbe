package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"serbisyo/config"
	"serbisyo/models"

	"go.uber.org/zap"
)

// GCashGateway is the redirect-wallet adapter: create a payment source, send
// the client to the wallet's checkout URL, then confirm the source status on
// the redirect callback.
type GCashGateway struct {
	Cfg       config.GCashConfig
	Finalizer *Finalizer
	Logger    *zap.Logger
	client    *http.Client
}

func NewGCashGateway(cfg config.GCashConfig, finalizer *Finalizer, logger *zap.Logger) *GCashGateway {
	return &GCashGateway{
		Cfg:       cfg,
		Finalizer: finalizer,
		Logger:    logger,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *GCashGateway) Method() string { return models.PaymentMethodGCash }

type gcashSourceRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Type        string `json:"type"`
	Reference   string `json:"reference"`
	Description string `json:"description,omitempty"`
	Redirect    struct {
		Success string `json:"success"`
		Failed  string `json:"failed"`
	} `json:"redirect"`
}

type gcashSourceResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status   string `json:"status"`
			Redirect struct {
				CheckoutURL string `json:"checkout_url"`
			} `json:"redirect"`
		} `json:"attributes"`
	} `json:"data"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors,omitempty"`
}

// CreatePayment creates a wallet source and returns the checkout URL the
// client must be redirected to.
func (g *GCashGateway) CreatePayment(ctx context.Context, req models.PaymentRequest) (models.GatewayResult, error) {
	body := gcashSourceRequest{
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Type:        "gcash",
		Reference:   req.BookingID,
		Description: req.Description,
	}
	body.Redirect.Success = req.SuccessURL
	body.Redirect.Failed = req.CancelURL

	var resp gcashSourceResponse
	if err := g.call(ctx, http.MethodPost, "/sources", body, &resp); err != nil {
		return models.GatewayResult{Error: "Failed to initiate GCash payment"}, err
	}
	if len(resp.Errors) > 0 {
		return models.GatewayResult{Error: resp.Errors[0].Detail},
			NewGatewayError(resp.Errors[0].Detail)
	}

	return models.GatewayResult{
		Success:     true,
		SessionRef:  resp.Data.ID,
		RedirectURL: resp.Data.Attributes.Redirect.CheckoutURL,
	}, nil
}

// HandleResult fetches the source's authoritative status after the redirect
// callback and finalizes on a terminal outcome. Safe to call again on a
// re-delivered callback.
func (g *GCashGateway) HandleResult(ctx context.Context, booking *models.Booking, providerRef string) error {
	var resp gcashSourceResponse
	if err := g.call(ctx, http.MethodGet, "/sources/"+providerRef, nil, &resp); err != nil {
		return err
	}

	status := resp.Data.Attributes.Status
	switch status {
	case "chargeable", "paid":
		return g.Finalizer.CompletePayment(ctx, booking, booking.Price, g.Method(), providerRef, "system")
	case "cancelled", "expired", "failed":
		return g.Finalizer.RejectPayment(ctx, booking, booking.Price, g.Method(), providerRef,
			fmt.Sprintf("GCash payment %s", status), models.EventPaymentFailed)
	case "pending":
		return NewGatewayError("GCash payment is not yet confirmed")
	default:
		g.Logger.Warn("unexpected GCash source status",
			zap.String("sourceId", providerRef), zap.String("status", status))
		return NewGatewayError(fmt.Sprintf("Unexpected GCash payment status: %s", status))
	}
}

// call issues one provider request. Network failures and provider 5xx/429
// responses are marked transient for the retry executor.
func (g *GCashGateway) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode GCash request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.Cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build GCash request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.Cfg.SecretKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		return MarkTransient(fmt.Errorf("GCash request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return MarkTransient(fmt.Errorf("GCash returned status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		var failure gcashSourceResponse
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && len(failure.Errors) > 0 {
			return NewGatewayError(failure.Errors[0].Detail)
		}
		return NewGatewayError(fmt.Sprintf("GCash rejected the request with status %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode GCash response: %w", err)
		}
	}
	return nil
}
