package api

import (
	"time"

	"github.com/phrazzld/cardlink/internal/domain"
)

// Request and response payloads of the scheme API. Field formats are
// checked by the service layer; the tags here only reject missing values.

// ClientTokenRequest defines the payload for the client token endpoint.
type ClientTokenRequest struct {
	MerchantAppID string `json:"merchant_app_id" validate:"required,max=128"`
}

// ClientTokenResponse is returned when a client token is issued.
type ClientTokenResponse struct {
	ClientToken string    `json:"client_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LinkOTPRequest defines the payload for POST /v1/links/otp.
type LinkOTPRequest struct {
	CardNumber   string `json:"card_number"   validate:"required"`
	ExpiredTime  string `json:"expired_time"`
	MobileNumber string `json:"mobile_number" validate:"required"`
	DiallingCode string `json:"dialling_code" validate:"required"`
}

// LinkOTPResponse carries the token that confirms a link.
type LinkOTPResponse struct {
	LinkToken string `json:"link_token"`
}

// LinkCardRequest defines the payload for POST /v1/links.
type LinkCardRequest struct {
	LinkToken  string `json:"link_token"  validate:"required"`
	OTPCode    string `json:"otp_code"    validate:"required"`
	CardNumber string `json:"card_number" validate:"required"`
}

// UnlinkOTPRequest defines the payload for POST /v1/unlinks/otp.
type UnlinkOTPRequest struct {
	CardNumber   string `json:"card_number"   validate:"required"`
	ExpiredTime  string `json:"expired_time"`
	MobileNumber string `json:"mobile_number" validate:"required"`
	DiallingCode string `json:"dialling_code" validate:"required"`
}

// UnlinkOTPResponse carries the token that confirms an unlink.
type UnlinkOTPResponse struct {
	UnlinkToken string `json:"unlink_token"`
}

// UnlinkCardRequest defines the payload for POST /v1/unlinks.
type UnlinkCardRequest struct {
	UnlinkToken string `json:"unlink_token" validate:"required"`
	OTPCode     string `json:"otp_code"     validate:"required"`
	CardNumber  string `json:"card_number"  validate:"required"`
}

// PaymentRequest defines the payload for POST /v1/payments.
type PaymentRequest struct {
	CardNumber   string `json:"card_number"   validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required"`
}

// LinkedCardsResponse lists the cards linked to a phone.
type LinkedCardsResponse struct {
	Cards []domain.LinkedCard `json:"cards"`
}

// SandboxOTPResponse returns the last OTP sent to a phone.
type SandboxOTPResponse struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}
