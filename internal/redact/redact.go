// Package redact masks card numbers, phone numbers, one-time codes and
// credentials before they reach log output or error responses.
package redact

import (
	"regexp"
	"strings"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedOTPPlaceholder        = "[REDACTED_OTP]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

const maskChar = "*"

// Precompiled regex patterns
var (
	// JWT token pattern - matches the standard three-part base64url-encoded JWT token format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
	bearerRegex   = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/=]{8,}`)
	apiKeyRegex   = regexp.MustCompile(
		`(?i)(api[_-]?key|secret|password)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{6,}`,
	)
	otpRegex = regexp.MustCompile(`(?i)(otp|one[- ]time code|otp_code|otpcode)(['"\s:=]+)[0-9]{4,6}\b`)

	// Card numbers are 8 to 19 digits; phone numbers may carry a leading plus.
	panRegex   = regexp.MustCompile(`\b[0-9]{8,19}\b`)
	phoneRegex = regexp.MustCompile(`\+[0-9]{7,18}\b`)
)

// CardNumber masks all but the last four digits of a card number.
func CardNumber(pan string) string {
	return maskKeepLast(strings.TrimSpace(pan), 4)
}

// PhoneNumber masks all but the last two digits of a phone number, keeping
// a leading plus sign.
func PhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return "+" + maskKeepLast(phone[1:], 2)
	}
	return maskKeepLast(phone, 2)
}

// OTP hides a one-time code entirely.
func OTP(code string) string {
	if code == "" {
		return ""
	}
	return RedactedOTPPlaceholder
}

// Token hides an opaque token, keeping only whether it was present.
func Token(token string) string {
	if token == "" {
		return ""
	}
	return RedactedTokenPlaceholder
}

func maskKeepLast(value string, keep int) string {
	if value == "" {
		return ""
	}
	if len(value) <= keep {
		return strings.Repeat(maskChar, len(value))
	}
	return strings.Repeat(maskChar, len(value)-keep) + value[len(value)-keep:]
}

// String redacts sensitive information from free text such as error
// messages returned by the scheme backend.
func String(input string) string {
	if input == "" {
		return input
	}

	result := jwtTokenRegex.ReplaceAllString(input, RedactedTokenPlaceholder)
	result = bearerRegex.ReplaceAllString(result, "Bearer "+RedactedTokenPlaceholder)
	result = apiKeyRegex.ReplaceAllString(result, RedactedKeyPlaceholder)
	result = otpRegex.ReplaceAllString(result, "${1}${2}"+RedactedOTPPlaceholder)
	result = phoneRegex.ReplaceAllStringFunc(result, PhoneNumber)
	result = panRegex.ReplaceAllStringFunc(result, CardNumber)
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
