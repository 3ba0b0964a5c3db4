package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/cardlink/internal/service/auth"
)

// MockClientTokenService implements auth.ClientTokenService for testing
type MockClientTokenService struct {
	// GenerateClientTokenFn allows test cases to mock the GenerateClientToken behavior
	GenerateClientTokenFn func(ctx context.Context, merchantAppID string) (string, time.Time, error)

	// ValidateClientTokenFn allows test cases to mock the ValidateClientToken behavior
	ValidateClientTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	ExpiresAt   time.Time
	Err         error
	ValidateErr error
	Claims      *auth.Claims
}

var _ auth.ClientTokenService = (*MockClientTokenService)(nil)

// GenerateClientToken implements the auth.ClientTokenService interface
func (m *MockClientTokenService) GenerateClientToken(
	ctx context.Context,
	merchantAppID string,
) (string, time.Time, error) {
	if m.GenerateClientTokenFn != nil {
		return m.GenerateClientTokenFn(ctx, merchantAppID)
	}
	return m.Token, m.ExpiresAt, m.Err
}

// ValidateClientToken implements the auth.ClientTokenService interface
func (m *MockClientTokenService) ValidateClientToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateClientTokenFn != nil {
		return m.ValidateClientTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}
