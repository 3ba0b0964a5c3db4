package store

import (
	"context"
	"strings"
	"sync"

	"github.com/phrazzld/cardlink/internal/domain"
)

// PaymentStore persists accepted payment requests.
type PaymentStore interface {
	// Create saves receipt. Returns ErrDuplicate if the payment id exists.
	Create(ctx context.Context, receipt *domain.PaymentReceipt) error

	// Get returns the payment with id, or ErrPaymentNotFound.
	Get(ctx context.Context, id string) (*domain.PaymentReceipt, error)
}

// MemoryPaymentStore is an in-memory PaymentStore.
type MemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[string]domain.PaymentReceipt
}

var _ PaymentStore = (*MemoryPaymentStore)(nil)

// NewMemoryPaymentStore creates an empty MemoryPaymentStore.
func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{payments: make(map[string]domain.PaymentReceipt)}
}

// Create implements PaymentStore.
func (s *MemoryPaymentStore) Create(_ context.Context, receipt *domain.PaymentReceipt) error {
	if receipt == nil || strings.TrimSpace(receipt.PaymentID) == "" {
		return NewStoreError("payment", "create", "payment id is required", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[receipt.PaymentID]; ok {
		return NewStoreError("payment", "create", "payment id already used", ErrDuplicate)
	}
	s.payments[receipt.PaymentID] = *receipt
	return nil
}

// Get implements PaymentStore.
func (s *MemoryPaymentStore) Get(_ context.Context, id string) (*domain.PaymentReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &p, nil
}
