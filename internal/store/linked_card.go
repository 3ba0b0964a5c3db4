package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/phrazzld/cardlink/internal/domain"
)

// LinkedCardStore is the registry of cards linked to phone numbers. A card
// is linked to at most one phone at a time.
type LinkedCardStore interface {
	// Link records card as linked to phone. Returns ErrCardAlreadyLinked if
	// the card is linked to any phone.
	Link(ctx context.Context, phone string, card domain.LinkedCard) error

	// Unlink removes cardNumber from phone. Returns ErrCardNotFound if the
	// card is not linked to that phone.
	Unlink(ctx context.Context, phone, cardNumber string) error

	// ListByPhone returns the cards linked to phone, oldest first.
	ListByPhone(ctx context.Context, phone string) ([]domain.LinkedCard, error)

	// PhoneFor returns the phone cardNumber is linked to, or ErrCardNotFound.
	PhoneFor(ctx context.Context, cardNumber string) (string, error)
}

// MemoryLinkedCardStore is an in-memory LinkedCardStore.
type MemoryLinkedCardStore struct {
	mu      sync.RWMutex
	byPhone map[string]map[string]domain.LinkedCard
	byCard  map[string]string
}

var _ LinkedCardStore = (*MemoryLinkedCardStore)(nil)

// NewMemoryLinkedCardStore creates an empty MemoryLinkedCardStore.
func NewMemoryLinkedCardStore() *MemoryLinkedCardStore {
	return &MemoryLinkedCardStore{
		byPhone: make(map[string]map[string]domain.LinkedCard),
		byCard:  make(map[string]string),
	}
}

// Link implements LinkedCardStore.
func (s *MemoryLinkedCardStore) Link(_ context.Context, phone string, card domain.LinkedCard) error {
	if strings.TrimSpace(phone) == "" || strings.TrimSpace(card.CardNumber) == "" {
		return NewStoreError("linked_card", "link", "phone and card number are required", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCard[card.CardNumber]; ok {
		return ErrCardAlreadyLinked
	}
	cards, ok := s.byPhone[phone]
	if !ok {
		cards = make(map[string]domain.LinkedCard)
		s.byPhone[phone] = cards
	}
	cards[card.CardNumber] = card
	s.byCard[card.CardNumber] = phone
	return nil
}

// Unlink implements LinkedCardStore.
func (s *MemoryLinkedCardStore) Unlink(_ context.Context, phone, cardNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byCard[cardNumber] != phone {
		return ErrCardNotFound
	}
	delete(s.byCard, cardNumber)
	delete(s.byPhone[phone], cardNumber)
	if len(s.byPhone[phone]) == 0 {
		delete(s.byPhone, phone)
	}
	return nil
}

// ListByPhone implements LinkedCardStore.
func (s *MemoryLinkedCardStore) ListByPhone(_ context.Context, phone string) ([]domain.LinkedCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards := make([]domain.LinkedCard, 0, len(s.byPhone[phone]))
	for _, c := range s.byPhone[phone] {
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].LinkedAt.Equal(cards[j].LinkedAt) {
			return cards[i].CardNumber < cards[j].CardNumber
		}
		return cards[i].LinkedAt.Before(cards[j].LinkedAt)
	})
	return cards, nil
}

// PhoneFor implements LinkedCardStore.
func (s *MemoryLinkedCardStore) PhoneFor(_ context.Context, cardNumber string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phone, ok := s.byCard[cardNumber]
	if !ok {
		return "", ErrCardNotFound
	}
	return phone, nil
}
