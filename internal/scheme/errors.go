package scheme

import (
	"errors"
	"fmt"

	"github.com/phrazzld/cardlink/internal/api/shared"
)

// Errors reported by the scheme backend. APIError unwraps to one of them
// based on the response code, so callers can use errors.Is.
var (
	ErrInvalidRequest    = errors.New("scheme rejected the request as invalid")
	ErrUnauthorized      = errors.New("scheme rejected the client token")
	ErrTokenExpired      = errors.New("client token has expired")
	ErrChallengeNotFound = errors.New("unknown or already used token")
	ErrChallengeExpired  = errors.New("otp has expired")
	ErrInvalidOTP        = errors.New("otp is incorrect")
	ErrTooManyAttempts   = errors.New("too many otp attempts")
	ErrMerchantMismatch  = errors.New("token was issued to another merchant")
	ErrCardMismatch      = errors.New("card number does not match the token")
	ErrCardAlreadyLinked = errors.New("card is already linked")
	ErrCardNotLinked     = errors.New("card is not linked to this phone")
	ErrNotFound          = errors.New("not found")
	ErrSchemeUnavailable = errors.New("scheme backend is unavailable")
)

var codeErrors = map[string]error{
	shared.CodeInvalidRequest:    ErrInvalidRequest,
	shared.CodeUnauthorized:      ErrUnauthorized,
	shared.CodeTokenExpired:      ErrTokenExpired,
	shared.CodeChallengeNotFound: ErrChallengeNotFound,
	shared.CodeChallengeExpired:  ErrChallengeExpired,
	shared.CodeInvalidOTP:        ErrInvalidOTP,
	shared.CodeTooManyAttempts:   ErrTooManyAttempts,
	shared.CodeMerchantMismatch:  ErrMerchantMismatch,
	shared.CodeCardMismatch:      ErrCardMismatch,
	shared.CodeCardAlreadyLinked: ErrCardAlreadyLinked,
	shared.CodeCardNotLinked:     ErrCardNotLinked,
	shared.CodeNotFound:          ErrNotFound,
}

// APIError is a non-2xx response from the scheme backend.
type APIError struct {
	Operation string
	Status    int
	Code      string
	Message   string
	TraceID   string
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("scheme %s failed with status %d", e.Operation, e.Status)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns the sentinel matching the response code, or
// ErrSchemeUnavailable for unrecognized 5xx responses.
func (e *APIError) Unwrap() error {
	if err, ok := codeErrors[e.Code]; ok {
		return err
	}
	if e.Status >= 500 {
		return ErrSchemeUnavailable
	}
	return nil
}
