package auth

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateOTP returns a numeric one-time code of the given length, drawn
// from crypto/rand.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	s := make([]byte, length)
	for i := range b {
		s[i] = '0' + (b[i] % 10)
	}
	return string(s), nil
}

// OTPHasher hashes one-time codes for storage and compares them later.
type OTPHasher interface {
	// Hash returns a storable hash of otp.
	Hash(otp string) (string, error)

	// Compare returns nil when otp matches hash and ErrOTPMismatch when it does not.
	Compare(hash, otp string) error
}

// BcryptOTPHasher implements OTPHasher using bcrypt.
type BcryptOTPHasher struct {
	cost int
}

// NewBcryptOTPHasher creates a BcryptOTPHasher. A cost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewBcryptOTPHasher(cost int) *BcryptOTPHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptOTPHasher{cost: cost}
}

// Hash implements OTPHasher.
func (h *BcryptOTPHasher) Hash(otp string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash otp: %w", err)
	}
	return string(hash), nil
}

// Compare implements OTPHasher.
func (h *BcryptOTPHasher) Compare(hash, otp string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(otp))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrOTPMismatch
	}
	return err
}
