package config

import (
	"fmt"
	"math"
	"time"

	"serbisyo/models"
)

// allowedProofMimeTypes is the MIME allow-list for proof-of-payment uploads.
var allowedProofMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateAmount reports whether actual matches expected within the absolute
// tolerance.
func ValidateAmount(actual, expected float64) bool {
	return math.Abs(actual-expected) <= AmountTolerance
}

// IsSessionValid reports whether a session created at the given time is still
// inside the session timeout.
func IsSessionValid(createdAt time.Time) bool {
	return time.Since(createdAt) <= SessionTimeout
}

// FileCheckResult is the outcome of validating an upload's metadata.
type FileCheckResult struct {
	Valid bool
	Error string
}

// ValidateFileUpload checks a proof-of-payment attachment against the size
// ceiling and MIME allow-list.
func ValidateFileUpload(file models.ProofFile) FileCheckResult {
	if file.Size > MaxProofFileSize {
		return FileCheckResult{
			Error: fmt.Sprintf("File size exceeds the %dMB limit", MaxProofFileSize>>20),
		}
	}
	if !allowedProofMimeTypes[file.MimeType] {
		return FileCheckResult{
			Error: fmt.Sprintf("File type %s is not allowed; use JPEG, PNG or WebP", file.MimeType),
		}
	}
	return FileCheckResult{Valid: true}
}
