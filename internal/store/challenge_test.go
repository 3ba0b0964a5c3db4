package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChallenge(token string, expiresAt time.Time) *Challenge {
	return &Challenge{
		Token:         token,
		Purpose:       ChallengeLink,
		MerchantAppID: "merchant-app-1",
		CardNumber:    "6280123412341234",
		Phone:         "+971501234567",
		OTPHash:       "hash",
		CreatedAt:     expiresAt.Add(-5 * time.Minute),
		ExpiresAt:     expiresAt,
	}
}

func TestMemoryChallengeStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryChallengeStore()
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Create(ctx, newTestChallenge("tok-1", expires)))

	got, err := s.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, ChallengeLink, got.Purpose)
	assert.Equal(t, "+971501234567", got.Phone)

	// Returned values are copies.
	got.Attempts = 99
	again, err := s.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Zero(t, again.Attempts)
}

func TestMemoryChallengeStore_CreateRejects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryChallengeStore()
	expires := time.Now().Add(time.Minute)

	assert.ErrorIs(t, s.Create(ctx, nil), ErrInvalidEntity)
	assert.ErrorIs(t, s.Create(ctx, newTestChallenge(" ", expires)), ErrInvalidEntity)

	noHash := newTestChallenge("tok", expires)
	noHash.OTPHash = ""
	assert.ErrorIs(t, s.Create(ctx, noHash), ErrInvalidEntity)

	require.NoError(t, s.Create(ctx, newTestChallenge("tok", expires)))
	err := s.Create(ctx, newTestChallenge("tok", expires))
	assert.ErrorIs(t, err, ErrChallengeExists)
	assert.True(t, IsDuplicateError(err))
}

func TestMemoryChallengeStore_Attempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryChallengeStore()
	require.NoError(t, s.Create(ctx, newTestChallenge("tok", time.Now().Add(time.Minute))))

	n, err := s.IncrementAttempts(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.IncrementAttempts(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.IncrementAttempts(ctx, "missing")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestMemoryChallengeStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryChallengeStore()
	require.NoError(t, s.Create(ctx, newTestChallenge("tok", time.Now().Add(time.Minute))))

	require.NoError(t, s.Delete(ctx, "tok"))
	_, err := s.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "tok"), ErrChallengeNotFound)
}

func TestMemoryChallengeStore_DeleteExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryChallengeStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Create(ctx, newTestChallenge("old", now.Add(-time.Second))))
	require.NoError(t, s.Create(ctx, newTestChallenge("edge", now)))
	require.NoError(t, s.Create(ctx, newTestChallenge("fresh", now.Add(time.Minute))))

	assert.Equal(t, 2, s.DeleteExpired(ctx, now))

	_, err := s.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "edge")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallenge_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newTestChallenge("tok", now)
	assert.True(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(time.Second)))
	assert.False(t, c.Expired(now.Add(-time.Second)))
}
