package handlers

import (
	"net/http"
	"time"

	"serbisyo/config"
	bookingRepo "serbisyo/database/repository/booking"
	"serbisyo/models"
	"serbisyo/services/payment"
	"serbisyo/services/storage"
	"serbisyo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StorageHandler accepts proof-of-payment uploads for wallet payments that
// are verified manually.
type StorageHandler struct {
	Storage  storage.StorageService
	Bookings bookingRepo.BookingRepository
	Logger   *zap.Logger
}

func NewStorageHandler(storageSvc storage.StorageService, bookings bookingRepo.BookingRepository, logger *zap.Logger) *StorageHandler {
	return &StorageHandler{Storage: storageSvc, Bookings: bookings, Logger: logger}
}

// UploadProof validates the attachment metadata, stores the image, and
// records the upload on the booking.
func (h *StorageHandler) UploadProof(c *gin.Context) {
	if h.Storage == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Proof uploads are not available", "")
		return
	}
	bookingID := c.Param("bookingID")
	userID := c.GetString("userID")

	booking, err := h.Bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Booking not found", "")
		return
	}
	if booking.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized access to booking"})
		return
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Missing proof file", err.Error())
		return
	}

	proof := models.ProofFile{
		Name:     fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
	}
	if check := config.ValidateFileUpload(proof); !check.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": check.Error})
		return
	}
	if payment.SuspiciousFilename(proof.Name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename detected"})
		return
	}

	var warnings []string
	if proof.Size > 0 && proof.Size < config.MinLegibleProofSize {
		warnings = append(warnings, "Uploaded file is very small and may be unreadable")
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to read proof file", err.Error())
		return
	}
	defer file.Close()

	url, err := h.Storage.UploadProof(c.Request.Context(), bookingID, file)
	if err != nil {
		h.Logger.Error("proof upload failed", zap.String("bookingId", bookingID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to store proof of payment", "Please try again later")
		return
	}

	if err := h.Bookings.SetProofUploaded(c.Request.Context(), bookingID, url, time.Now()); err != nil {
		h.Logger.Error("failed to record proof upload", zap.String("bookingId", bookingID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to record proof of payment", "Please try again later")
		return
	}

	c.JSON(http.StatusOK, gin.H{"proofUrl": url, "warnings": warnings})
}
