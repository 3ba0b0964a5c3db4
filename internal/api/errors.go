package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/service"
	"github.com/phrazzld/cardlink/internal/service/auth"
	"github.com/phrazzld/cardlink/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrMerchantMismatch):
		return http.StatusForbidden

	case errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrCardNotLinked),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrCardAlreadyLinked):
		return http.StatusConflict

	case errors.Is(err, service.ErrChallengeExpired):
		return http.StatusGone

	case errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrCardMismatch):
		return http.StatusUnprocessableEntity

	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToCode returns the machine-readable error code for err.
func MapErrorToCode(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.CodeTokenExpired
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return shared.CodeUnauthorized
	case errors.Is(err, service.ErrMerchantMismatch):
		return shared.CodeMerchantMismatch
	case errors.Is(err, service.ErrChallengeNotFound):
		return shared.CodeChallengeNotFound
	case errors.Is(err, service.ErrCardNotLinked):
		return shared.CodeCardNotLinked
	case errors.Is(err, service.ErrCardAlreadyLinked):
		return shared.CodeCardAlreadyLinked
	case errors.Is(err, service.ErrChallengeExpired):
		return shared.CodeChallengeExpired
	case errors.Is(err, service.ErrInvalidOTP):
		return shared.CodeInvalidOTP
	case errors.Is(err, service.ErrCardMismatch):
		return shared.CodeCardMismatch
	case errors.Is(err, service.ErrTooManyAttempts):
		return shared.CodeTooManyAttempts
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, store.ErrInvalidEntity):
		return shared.CodeInvalidRequest
	case errors.Is(err, store.ErrNotFound):
		return shared.CodeNotFound
	default:
		return shared.CodeInternal
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid client token"
	case errors.Is(err, service.ErrMerchantMismatch):
		return "Token was issued to another merchant"
	case errors.Is(err, service.ErrChallengeNotFound):
		return "Unknown or already used token"
	case errors.Is(err, service.ErrCardNotLinked):
		return "Card is not linked to this phone number"
	case errors.Is(err, service.ErrCardAlreadyLinked):
		return "Card is already linked"
	case errors.Is(err, service.ErrChallengeExpired):
		return "OTP has expired"
	case errors.Is(err, service.ErrInvalidOTP):
		return "OTP is incorrect"
	case errors.Is(err, service.ErrCardMismatch):
		return "Card number does not match the token"
	case errors.Is(err, service.ErrTooManyAttempts):
		return "Too many incorrect OTP attempts"
	case errors.Is(err, service.ErrInvalidRequest):
		// Validation messages are written for end users and carry no input.
		var svcErr *service.SchemeServiceError
		if errors.As(err, &svcErr) && svcErr.Message != "" {
			return svcErr.Message
		}
		return "Invalid request"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status, code and safe message for err. A
// non-empty fallback replaces the message of 5xx responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status >= http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, shared.WithErrorCode(MapErrorToCode(err)))
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "numeric", "e164":
		return "invalid format"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
