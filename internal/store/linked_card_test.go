package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPhone      = "+971501234567"
	testOtherPhone = "+971509999999"
)

func linkedCard(number string, at time.Time) domain.LinkedCard {
	return domain.LinkedCard{CardNumber: number, ExpiredTime: "12/30", LinkedAt: at}
}

func TestMemoryLinkedCardStore_LinkAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryLinkedCardStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Link(ctx, testPhone, linkedCard("6280000000000002", base.Add(time.Hour))))
	require.NoError(t, s.Link(ctx, testPhone, linkedCard("6280000000000001", base)))
	require.NoError(t, s.Link(ctx, testOtherPhone, linkedCard("6280000000000003", base)))

	cards, err := s.ListByPhone(ctx, testPhone)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "6280000000000001", cards[0].CardNumber)
	assert.Equal(t, "6280000000000002", cards[1].CardNumber)

	phone, err := s.PhoneFor(ctx, "6280000000000003")
	require.NoError(t, err)
	assert.Equal(t, testOtherPhone, phone)
}

func TestMemoryLinkedCardStore_ListUnknownPhone(t *testing.T) {
	t.Parallel()

	cards, err := NewMemoryLinkedCardStore().ListByPhone(context.Background(), testPhone)
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestMemoryLinkedCardStore_LinkRejects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryLinkedCardStore()
	now := time.Now()

	assert.ErrorIs(t, s.Link(ctx, "", linkedCard("6280000000000001", now)), ErrInvalidEntity)
	assert.ErrorIs(t, s.Link(ctx, testPhone, linkedCard(" ", now)), ErrInvalidEntity)

	require.NoError(t, s.Link(ctx, testPhone, linkedCard("6280000000000001", now)))
	assert.ErrorIs(t, s.Link(ctx, testPhone, linkedCard("6280000000000001", now)), ErrCardAlreadyLinked)
	assert.ErrorIs(t, s.Link(ctx, testOtherPhone, linkedCard("6280000000000001", now)), ErrCardAlreadyLinked)
}

func TestMemoryLinkedCardStore_Unlink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryLinkedCardStore()
	require.NoError(t, s.Link(ctx, testPhone, linkedCard("6280000000000001", time.Now())))

	t.Run("wrong phone", func(t *testing.T) {
		assert.ErrorIs(t, s.Unlink(ctx, testOtherPhone, "6280000000000001"), ErrCardNotFound)
	})

	t.Run("linked card", func(t *testing.T) {
		require.NoError(t, s.Unlink(ctx, testPhone, "6280000000000001"))
		cards, err := s.ListByPhone(ctx, testPhone)
		require.NoError(t, err)
		assert.Empty(t, cards)
		_, err = s.PhoneFor(ctx, "6280000000000001")
		assert.ErrorIs(t, err, ErrCardNotFound)
	})

	t.Run("relink after unlink", func(t *testing.T) {
		assert.NoError(t, s.Link(ctx, testOtherPhone, linkedCard("6280000000000001", time.Now())))
	})
}

func TestMemoryLinkedCardStore_ConcurrentLink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryLinkedCardStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Link(ctx, testPhone, linkedCard("6280000000000001", time.Now())); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}
