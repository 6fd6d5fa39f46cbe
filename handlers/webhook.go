package handlers

import (
	"io"
	"net/http"

	"serbisyo/services/payment"
	"serbisyo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// checkoutSignatureHeader carries the provider's HMAC signature.
const checkoutSignatureHeader = "X-Checkout-Signature"

// WebhookHandler receives provider webhook POSTs.
type WebhookHandler struct {
	Service payment.PaymentService
	Logger  *zap.Logger
}

func NewWebhookHandler(service payment.PaymentService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Service: service, Logger: logger}
}

// CheckoutWebhook verifies and applies a checkout provider event. The raw
// body is read before any parsing so the signature covers the exact bytes.
func (h *WebhookHandler) CheckoutWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read webhook body", err.Error())
		return
	}
	signature := c.GetHeader(checkoutSignatureHeader)
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing webhook signature"})
		return
	}

	if err := h.Service.HandleCheckoutWebhook(c.Request.Context(), payload, signature); err != nil {
		if pe, ok := payment.IsPaymentError(err); ok {
			if pe.Message == "Invalid webhook signature" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": pe.Message})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": pe.Message})
			return
		}
		// Signal the provider to re-deliver; the processing is idempotent.
		h.Logger.Error("checkout webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
