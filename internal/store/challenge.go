package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ChallengePurpose says what an OTP challenge authorizes.
type ChallengePurpose string

// Challenge purposes.
const (
	ChallengeLink   ChallengePurpose = "link"
	ChallengeUnlink ChallengePurpose = "unlink"
)

// Challenge is a pending OTP confirmation. Token is handed to the merchant;
// the OTP itself is only kept as a hash.
type Challenge struct {
	Token         string
	Purpose       ChallengePurpose
	MerchantAppID string
	CardNumber    string
	ExpiredTime   string
	Phone         string
	OTPHash       string
	Attempts      int
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the challenge is no longer usable at now.
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// ChallengeStore persists OTP challenges.
type ChallengeStore interface {
	// Create saves a new challenge. Returns ErrChallengeExists on a token collision.
	Create(ctx context.Context, challenge *Challenge) error

	// Get returns a copy of the challenge for token, or ErrChallengeNotFound.
	Get(ctx context.Context, token string) (*Challenge, error)

	// IncrementAttempts records a failed confirmation and returns the new count.
	IncrementAttempts(ctx context.Context, token string) (int, error)

	// Delete removes the challenge for token, or returns ErrChallengeNotFound.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every challenge expired at now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) int
}

// MemoryChallengeStore is an in-memory ChallengeStore.
type MemoryChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

var _ ChallengeStore = (*MemoryChallengeStore)(nil)

// NewMemoryChallengeStore creates an empty MemoryChallengeStore.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{challenges: make(map[string]Challenge)}
}

// Create implements ChallengeStore.
func (s *MemoryChallengeStore) Create(_ context.Context, challenge *Challenge) error {
	if challenge == nil || strings.TrimSpace(challenge.Token) == "" || challenge.OTPHash == "" {
		return NewStoreError("challenge", "create", "token and otp hash are required", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[challenge.Token]; ok {
		return ErrChallengeExists
	}
	s.challenges[challenge.Token] = *challenge
	return nil
}

// Get implements ChallengeStore.
func (s *MemoryChallengeStore) Get(_ context.Context, token string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[token]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	return &c, nil
}

// IncrementAttempts implements ChallengeStore.
func (s *MemoryChallengeStore) IncrementAttempts(_ context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[token]
	if !ok {
		return 0, ErrChallengeNotFound
	}
	c.Attempts++
	s.challenges[token] = c
	return c.Attempts, nil
}

// Delete implements ChallengeStore.
func (s *MemoryChallengeStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[token]; !ok {
		return ErrChallengeNotFound
	}
	delete(s.challenges, token)
	return nil
}

// DeleteExpired implements ChallengeStore.
func (s *MemoryChallengeStore) DeleteExpired(_ context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, c := range s.challenges {
		if c.Expired(now) {
			delete(s.challenges, token)
			removed++
		}
	}
	return removed
}
