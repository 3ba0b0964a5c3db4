package auth

import (
	"context"
	"time"
)

// ClientTokenService issues and checks the client tokens merchants present
// to the scheme backend.
type ClientTokenService interface {
	// GenerateClientToken creates a signed token bound to merchantAppID.
	// Returns the token and its expiry.
	GenerateClientToken(ctx context.Context, merchantAppID string) (string, time.Time, error)

	// ValidateClientToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateClientToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims of a client token.
type Claims struct {
	// MerchantAppID is the merchant application the token was issued for.
	MerchantAppID string `json:"mid,omitempty"`

	// Standard registered JWT claims
	Issuer    string    `json:"iss,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
