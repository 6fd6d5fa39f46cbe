package handlers

import (
	"net/http"

	"serbisyo/models"
	"serbisyo/services/payment"
	"serbisyo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes the payment core over HTTP.
type PaymentHandler struct {
	Service payment.PaymentService
	Logger  *zap.Logger
}

func NewPaymentHandler(service payment.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: service, Logger: logger}
}

type initiatePaymentInput struct {
	BookingID string  `json:"bookingId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Method    string  `json:"method" binding:"required"`
	File      *struct {
		Name     string `json:"name"`
		Size     int64  `json:"size"`
		MimeType string `json:"mimeType"`
	} `json:"file,omitempty"`
}

// InitiatePayment starts a payment attempt for the authenticated user.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var input initiatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	userID := c.GetString("userID")

	var file *models.ProofFile
	if input.File != nil {
		file = &models.ProofFile{
			Name:     input.File.Name,
			Size:     input.File.Size,
			MimeType: input.File.MimeType,
		}
	}

	resp, err := h.Service.InitiatePayment(c.Request.Context(), payment.InitiateRequest{
		BookingID: input.BookingID,
		UserID:    userID,
		Amount:    input.Amount,
		Method:    input.Method,
		File:      file,
	})
	if err != nil {
		h.respondPaymentError(c, err, "failed to initiate payment")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPaymentStatus returns the caller's payment session for a booking.
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	bookingID := c.Param("bookingID")
	userID := c.GetString("userID")

	session, err := h.Service.GetPaymentStatus(c.Request.Context(), bookingID, userID)
	if err != nil {
		h.respondPaymentError(c, err, "failed to fetch payment status")
		return
	}
	c.JSON(http.StatusOK, session)
}

// CancelPayment cancels the caller's pending payment session.
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	bookingID := c.Param("bookingID")
	userID := c.GetString("userID")

	if err := h.Service.CancelPayment(c.Request.Context(), bookingID, userID); err != nil {
		h.respondPaymentError(c, err, "failed to cancel payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// RedirectCallback handles the provider redirect after a wallet or card
// authorization. It resolves the authoritative status regardless of the
// outcome hint in the query string.
func (h *PaymentHandler) RedirectCallback(c *gin.Context) {
	bookingID := c.Param("bookingID")

	if err := h.Service.ConfirmRedirect(c.Request.Context(), bookingID); err != nil {
		h.respondPaymentError(c, err, "failed to confirm payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed", "bookingId": bookingID})
}

type rejectPaymentInput struct {
	Reason string `json:"reason" binding:"required"`
}

// VerifyManualPayment is the admin path settling a proof-reviewed payment.
func (h *PaymentHandler) VerifyManualPayment(c *gin.Context) {
	bookingID := c.Param("bookingID")
	adminID := c.GetString("adminID")

	if err := h.Service.VerifyManualPayment(c.Request.Context(), bookingID, adminID); err != nil {
		h.respondPaymentError(c, err, "failed to verify payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verified", "bookingId": bookingID})
}

// RejectManualPayment is the admin path rejecting a reviewed payment.
func (h *PaymentHandler) RejectManualPayment(c *gin.Context) {
	bookingID := c.Param("bookingID")
	adminID := c.GetString("adminID")

	var input rejectPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Service.RejectManualPayment(c.Request.Context(), bookingID, adminID, input.Reason); err != nil {
		h.respondPaymentError(c, err, "failed to reject payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected", "bookingId": bookingID})
}

// respondPaymentError maps business-rule errors to 4xx responses and hides
// everything else behind a generic 500.
func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error, logMsg string) {
	if pe, ok := payment.IsPaymentError(err); ok {
		status := http.StatusBadRequest
		if pe.Code == "sessionError" {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": pe.Message})
		return
	}
	h.Logger.Error(logMsg, zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Failed to process payment", "Please try again later")
}
