package shared

// Machine-readable error codes carried in ErrorResponse.Code. Scheme clients
// switch on these, so they are part of the wire contract.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeUnauthorized      = "unauthorized"
	CodeTokenExpired      = "token_expired"
	CodeChallengeNotFound = "challenge_not_found"
	CodeChallengeExpired  = "challenge_expired"
	CodeInvalidOTP        = "invalid_otp"
	CodeTooManyAttempts   = "too_many_attempts"
	CodeMerchantMismatch  = "merchant_mismatch"
	CodeCardMismatch      = "card_mismatch"
	CodeCardAlreadyLinked = "card_already_linked"
	CodeCardNotLinked     = "card_not_linked"
	CodeNotFound          = "not_found"
	CodeInternal          = "internal_error"
)
