package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"serbisyo/config"
	bookingRepo "serbisyo/database/repository/booking"
	"serbisyo/models"

	"go.uber.org/zap"
)

// filenameDenyList blocks proof uploads whose names carry script-injection
// substrings, regardless of passing the MIME and size checks.
var filenameDenyList = []string{"script", "javascript", "vbscript", "onload", "onerror"}

// SuspiciousFilename reports whether a filename matches the deny-list,
// case-insensitively.
func SuspiciousFilename(name string) bool {
	lower := strings.ToLower(name)
	for _, banned := range filenameDenyList {
		if strings.Contains(lower, banned) {
			return true
		}
	}
	return false
}

// Validator is the stateless rule engine run in front of every payment
// attempt. It accumulates all applicable violations into one result instead
// of stopping at the first, short-circuiting only when the booking itself is
// not payable.
type Validator struct {
	Cfg      *config.Config
	Bookings bookingRepo.BookingRepository
	Detector *DuplicateDetector
	Logger   *zap.Logger
}

// ValidatePaymentAmount checks the paid amount against the expected amount
// within the absolute tolerance, producing a message that shows both amounts
// and their difference.
func ValidatePaymentAmount(amount, expected float64) (bool, string) {
	if amount <= 0 {
		return false, "Payment amount must be greater than zero"
	}
	if expected <= 0 {
		return false, "Invalid expected amount"
	}
	if !config.ValidateAmount(amount, expected) {
		diff := amount - expected
		if diff < 0 {
			diff = -diff
		}
		return false, fmt.Sprintf(
			"Payment amount ₱%.2f does not match expected amount ₱%.2f. Difference: ₱%.2f",
			amount, expected, diff,
		)
	}
	return true, ""
}

// ValidatePayment runs the full rule chain for a payment attempt. Hard errors
// are joined with "; "; warnings never block the payment. Infrastructure
// failures in the booking check fail closed, while a failing duplicate lookup
// fails open: a soft secondary check must not block a legitimate payment, but
// the primary eligibility check must never be bypassed.
func (v *Validator) ValidatePayment(ctx context.Context, bookingID, userID string, amount float64, method string, file *models.ProofFile) models.ValidationResult {
	var hardErrors []string
	var warnings []string

	booking, err := v.Bookings.GetByID(ctx, bookingID)
	switch {
	case errors.Is(err, bookingRepo.ErrNotFound):
		return models.ValidationResult{Error: "Booking not found"}
	case err != nil:
		v.Logger.Error("booking lookup failed", zap.String("bookingId", bookingID), zap.Error(err))
		return models.ValidationResult{Error: "Failed to validate booking"}
	}

	if booking.ClientID != userID {
		return models.ValidationResult{Error: "Unauthorized access to booking"}
	}
	if booking.Status != models.BookingStatusPendingPayment {
		return models.ValidationResult{
			Error: fmt.Sprintf("Booking cannot be paid. Current status: %s", booking.Status),
		}
	}
	if time.Since(booking.CreatedAt) > config.BookingPaymentWindow {
		return models.ValidationResult{Error: "Booking has expired and can no longer be paid"}
	}

	if ok, msg := ValidatePaymentAmount(amount, booking.Price); !ok {
		hardErrors = append(hardErrors, msg)
	}

	dup, err := v.Detector.CheckDuplicate(ctx, bookingID, amount, method)
	if err != nil {
		// Fail open: the duplicate window is a heuristic and the unique index
		// still guards the ledger.
		v.Logger.Warn("duplicate check failed, treating as non-duplicate",
			zap.String("bookingId", bookingID), zap.Error(err))
	} else if dup.IsDuplicate {
		hardErrors = append(hardErrors, fmt.Sprintf(
			"Duplicate payment detected: an identical payment was submitted %s ago",
			dup.TimeDifference.Round(time.Second),
		))
	}

	switch method {
	case models.PaymentMethodGCash, models.PaymentMethodCard, models.PaymentMethodCheckout:
		if !v.Cfg.MethodConfigValid(method) {
			hardErrors = append(hardErrors, fmt.Sprintf("Payment method %s is not configured", method))
		}
	default:
		hardErrors = append(hardErrors, "Unknown payment method")
	}

	if file != nil {
		if check := config.ValidateFileUpload(*file); !check.Valid {
			hardErrors = append(hardErrors, check.Error)
		}
		if file.Size > 0 && file.Size < config.MinLegibleProofSize {
			warnings = append(warnings, "Uploaded file is very small and may be unreadable")
		}
		if SuspiciousFilename(file.Name) {
			hardErrors = append(hardErrors, "Invalid filename detected")
		}
	}

	if len(hardErrors) > 0 {
		return models.ValidationResult{Error: strings.Join(hardErrors, "; "), Warnings: warnings}
	}
	return models.ValidationResult{Valid: true, Warnings: warnings}
}
