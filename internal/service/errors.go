package service

import (
	"errors"
	"fmt"
)

// Scheme service errors. Callers check them with errors.Is; the API layer
// maps each one to an HTTP status code.
var (
	// ErrInvalidRequest indicates a request field failed validation.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidRequest = errors.New("invalid scheme request")

	// ErrChallengeNotFound indicates the link or unlink token is unknown,
	// already used or issued for the other purpose.
	// API layer should map this to HTTP 404 Not Found.
	ErrChallengeNotFound = errors.New("otp challenge not found")

	// ErrChallengeExpired indicates the OTP challenge outlived its TTL.
	// API layer should map this to HTTP 410 Gone.
	ErrChallengeExpired = errors.New("otp challenge has expired")

	// ErrInvalidOTP indicates the submitted OTP does not match the challenge.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrInvalidOTP = errors.New("otp code is incorrect")

	// ErrTooManyAttempts indicates the challenge was discarded after repeated
	// wrong codes. API layer should map this to HTTP 429 Too Many Requests.
	ErrTooManyAttempts = errors.New("too many otp attempts")

	// ErrMerchantMismatch indicates the token was issued to another merchant.
	// API layer should map this to HTTP 403 Forbidden.
	ErrMerchantMismatch = errors.New("challenge belongs to another merchant")

	// ErrCardMismatch indicates the card number differs from the one the
	// challenge was issued for. API layer should map this to HTTP 422.
	ErrCardMismatch = errors.New("card number does not match challenge")

	// ErrCardAlreadyLinked indicates the card is already linked to a phone.
	// API layer should map this to HTTP 409 Conflict.
	ErrCardAlreadyLinked = errors.New("card is already linked")

	// ErrCardNotLinked indicates the card is not linked to the given phone.
	// API layer should map this to HTTP 404 Not Found.
	ErrCardNotLinked = errors.New("card is not linked to this phone")
)

// SchemeServiceError is a custom error type for scheme service errors.
type SchemeServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SchemeServiceError.
func (e *SchemeServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scheme service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("scheme service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SchemeServiceError) Unwrap() error {
	return e.Err
}

// NewSchemeServiceError creates a new SchemeServiceError.
func NewSchemeServiceError(operation, message string, err error) *SchemeServiceError {
	return &SchemeServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
