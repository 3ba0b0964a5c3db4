package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
)

// MockLinkClient implements flow.LinkClient for testing. Without custom
// functions it answers synchronously with the default values.
type MockLinkClient struct {
	// Custom behavior functions
	RequestLinkOTPFn func(ctx context.Context, req flow.LinkOTPRequest, done func(flow.LinkOTPResponse, error))
	LinkCardFn       func(ctx context.Context, req flow.LinkCardRequest, done func(domain.LinkedCard, error))

	// Default response values
	LinkToken  string
	LinkedCard domain.LinkedCard
	Err        error

	mu               sync.Mutex
	linkOTPRequests  []flow.LinkOTPRequest
	linkCardRequests []flow.LinkCardRequest
}

// RequestLinkOTP implements flow.LinkClient.
func (m *MockLinkClient) RequestLinkOTP(
	ctx context.Context,
	req flow.LinkOTPRequest,
	done func(flow.LinkOTPResponse, error),
) {
	m.mu.Lock()
	m.linkOTPRequests = append(m.linkOTPRequests, req)
	m.mu.Unlock()

	if m.RequestLinkOTPFn != nil {
		m.RequestLinkOTPFn(ctx, req, done)
		return
	}
	if m.Err != nil {
		done(flow.LinkOTPResponse{}, m.Err)
		return
	}
	done(flow.LinkOTPResponse{LinkToken: m.LinkToken}, nil)
}

// LinkCard implements flow.LinkClient.
func (m *MockLinkClient) LinkCard(
	ctx context.Context,
	req flow.LinkCardRequest,
	done func(domain.LinkedCard, error),
) {
	m.mu.Lock()
	m.linkCardRequests = append(m.linkCardRequests, req)
	m.mu.Unlock()

	if m.LinkCardFn != nil {
		m.LinkCardFn(ctx, req, done)
		return
	}
	done(m.LinkedCard, m.Err)
}

// LinkOTPRequests returns the requests received by RequestLinkOTP.
func (m *MockLinkClient) LinkOTPRequests() []flow.LinkOTPRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]flow.LinkOTPRequest(nil), m.linkOTPRequests...)
}

// LinkCardRequests returns the requests received by LinkCard.
func (m *MockLinkClient) LinkCardRequests() []flow.LinkCardRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]flow.LinkCardRequest(nil), m.linkCardRequests...)
}

// CallCount returns the total number of collaborator calls.
func (m *MockLinkClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.linkOTPRequests) + len(m.linkCardRequests)
}

// MockUnlinkClient implements flow.UnlinkClient for testing.
type MockUnlinkClient struct {
	RequestUnlinkOTPFn func(ctx context.Context, req flow.UnlinkOTPRequest, done func(flow.UnlinkOTPResponse, error))
	UnlinkCardFn       func(ctx context.Context, req flow.UnlinkCardRequest, done func(error))

	UnlinkToken string
	Err         error

	mu                 sync.Mutex
	unlinkOTPRequests  []flow.UnlinkOTPRequest
	unlinkCardRequests []flow.UnlinkCardRequest
}

// RequestUnlinkOTP implements flow.UnlinkClient.
func (m *MockUnlinkClient) RequestUnlinkOTP(
	ctx context.Context,
	req flow.UnlinkOTPRequest,
	done func(flow.UnlinkOTPResponse, error),
) {
	m.mu.Lock()
	m.unlinkOTPRequests = append(m.unlinkOTPRequests, req)
	m.mu.Unlock()

	if m.RequestUnlinkOTPFn != nil {
		m.RequestUnlinkOTPFn(ctx, req, done)
		return
	}
	if m.Err != nil {
		done(flow.UnlinkOTPResponse{}, m.Err)
		return
	}
	done(flow.UnlinkOTPResponse{UnlinkToken: m.UnlinkToken}, nil)
}

// UnlinkCard implements flow.UnlinkClient.
func (m *MockUnlinkClient) UnlinkCard(ctx context.Context, req flow.UnlinkCardRequest, done func(error)) {
	m.mu.Lock()
	m.unlinkCardRequests = append(m.unlinkCardRequests, req)
	m.mu.Unlock()

	if m.UnlinkCardFn != nil {
		m.UnlinkCardFn(ctx, req, done)
		return
	}
	done(m.Err)
}

// UnlinkOTPRequests returns the requests received by RequestUnlinkOTP.
func (m *MockUnlinkClient) UnlinkOTPRequests() []flow.UnlinkOTPRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]flow.UnlinkOTPRequest(nil), m.unlinkOTPRequests...)
}

// UnlinkCardRequests returns the requests received by UnlinkCard.
func (m *MockUnlinkClient) UnlinkCardRequests() []flow.UnlinkCardRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]flow.UnlinkCardRequest(nil), m.unlinkCardRequests...)
}

// CallCount returns the total number of collaborator calls.
func (m *MockUnlinkClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.unlinkOTPRequests) + len(m.unlinkCardRequests)
}

// MockPaymentClient implements flow.PaymentClient for testing.
type MockPaymentClient struct {
	RequestPaymentFn func(ctx context.Context, req flow.PaymentRequest, done func(domain.PaymentReceipt, error))

	Receipt domain.PaymentReceipt
	Err     error

	mu       sync.Mutex
	requests []flow.PaymentRequest
}

// RequestPayment implements flow.PaymentClient.
func (m *MockPaymentClient) RequestPayment(
	ctx context.Context,
	req flow.PaymentRequest,
	done func(domain.PaymentReceipt, error),
) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.RequestPaymentFn != nil {
		m.RequestPaymentFn(ctx, req, done)
		return
	}
	done(m.Receipt, m.Err)
}

// Requests returns the requests received by RequestPayment.
func (m *MockPaymentClient) Requests() []flow.PaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]flow.PaymentRequest(nil), m.requests...)
}

// CallCount returns the number of RequestPayment calls.
func (m *MockPaymentClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// MockLinkedCardsClient implements flow.LinkedCardsClient for testing.
type MockLinkedCardsClient struct {
	ListLinkedCardsFn func(ctx context.Context, req flow.LinkedCardsRequest, done func([]domain.LinkedCard, error))

	Cards []domain.LinkedCard
	Err   error

	mu       sync.Mutex
	requests []flow.LinkedCardsRequest
}

// ListLinkedCards implements flow.LinkedCardsClient.
func (m *MockLinkedCardsClient) ListLinkedCards(
	ctx context.Context,
	req flow.LinkedCardsRequest,
	done func([]domain.LinkedCard, error),
) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.ListLinkedCardsFn != nil {
		m.ListLinkedCardsFn(ctx, req, done)
		return
	}
	done(m.Cards, m.Err)
}

// Requests returns the requests received by ListLinkedCards.
func (m *MockLinkedCardsClient) Requests() []flow.LinkedCardsRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]flow.LinkedCardsRequest(nil), m.requests...)
}
