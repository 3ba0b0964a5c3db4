package mocks

import (
	"context"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/service"
)

// MockSchemeService implements service.SchemeService for testing
type MockSchemeService struct {
	// Custom behavior functions
	RequestLinkOTPFn   func(ctx context.Context, req service.OTPRequest) (string, error)
	LinkCardFn         func(ctx context.Context, c service.Confirmation) (*domain.LinkedCard, error)
	RequestUnlinkOTPFn func(ctx context.Context, req service.OTPRequest) (string, error)
	UnlinkCardFn       func(ctx context.Context, c service.Confirmation) error
	RequestPaymentFn   func(ctx context.Context, req service.PaymentRequest) (*domain.PaymentReceipt, error)
	ListLinkedCardsFn  func(ctx context.Context, merchantAppID string, phone domain.PhoneData) ([]domain.LinkedCard, error)

	// Default return values
	Token        string
	Card         *domain.LinkedCard
	Receipt      *domain.PaymentReceipt
	Cards        []domain.LinkedCard
	DefaultError error
}

var _ service.SchemeService = (*MockSchemeService)(nil)

// RequestLinkOTP implements the SchemeService.RequestLinkOTP method
func (m *MockSchemeService) RequestLinkOTP(ctx context.Context, req service.OTPRequest) (string, error) {
	if m.RequestLinkOTPFn != nil {
		return m.RequestLinkOTPFn(ctx, req)
	}
	return m.Token, m.DefaultError
}

// LinkCard implements the SchemeService.LinkCard method
func (m *MockSchemeService) LinkCard(ctx context.Context, c service.Confirmation) (*domain.LinkedCard, error) {
	if m.LinkCardFn != nil {
		return m.LinkCardFn(ctx, c)
	}
	return m.Card, m.DefaultError
}

// RequestUnlinkOTP implements the SchemeService.RequestUnlinkOTP method
func (m *MockSchemeService) RequestUnlinkOTP(ctx context.Context, req service.OTPRequest) (string, error) {
	if m.RequestUnlinkOTPFn != nil {
		return m.RequestUnlinkOTPFn(ctx, req)
	}
	return m.Token, m.DefaultError
}

// UnlinkCard implements the SchemeService.UnlinkCard method
func (m *MockSchemeService) UnlinkCard(ctx context.Context, c service.Confirmation) error {
	if m.UnlinkCardFn != nil {
		return m.UnlinkCardFn(ctx, c)
	}
	return m.DefaultError
}

// RequestPayment implements the SchemeService.RequestPayment method
func (m *MockSchemeService) RequestPayment(
	ctx context.Context,
	req service.PaymentRequest,
) (*domain.PaymentReceipt, error) {
	if m.RequestPaymentFn != nil {
		return m.RequestPaymentFn(ctx, req)
	}
	return m.Receipt, m.DefaultError
}

// ListLinkedCards implements the SchemeService.ListLinkedCards method
func (m *MockSchemeService) ListLinkedCards(
	ctx context.Context,
	merchantAppID string,
	phone domain.PhoneData,
) ([]domain.LinkedCard, error) {
	if m.ListLinkedCardsFn != nil {
		return m.ListLinkedCardsFn(ctx, merchantAppID, phone)
	}
	return m.Cards, m.DefaultError
}

// PurgeExpiredChallenges implements the SchemeService.PurgeExpiredChallenges method
func (m *MockSchemeService) PurgeExpiredChallenges(context.Context) int {
	return 0
}
