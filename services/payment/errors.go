package payment

import (
	"errors"
	"fmt"
)

// Error is a business-rule violation surfaced to the caller. It never wraps
// infrastructure failures; those are logged and converted at the boundary.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &Error{Code: "validationError", Message: msg}
}

func NewSessionError(msg string) error {
	return &Error{Code: "sessionError", Message: msg}
}

func NewGatewayError(msg string) error {
	return &Error{Code: "gatewayError", Message: msg}
}

// IsPaymentError reports whether err is a business-rule Error and returns it.
func IsPaymentError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// TransientError marks a gateway failure as retryable. Only network-level and
// provider 5xx failures are wrapped; validation failures and declines are not.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// MarkTransient wraps err so the retry executor will retry it.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err was marked transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
