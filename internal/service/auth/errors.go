package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid client token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("client token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("client token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("client token is missing")

	// ErrOTPMismatch indicates a one-time code did not match its stored hash
	ErrOTPMismatch = errors.New("one-time code does not match")
)
