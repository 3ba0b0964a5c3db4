package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "generic not found", err: ErrNotFound, want: true},
		{name: "challenge not found", err: ErrChallengeNotFound, want: true},
		{name: "card not found", err: ErrCardNotFound, want: true},
		{name: "payment not found", err: ErrPaymentNotFound, want: true},
		{name: "wrapped", err: fmt.Errorf("lookup: %w", ErrCardNotFound), want: true},
		{name: "duplicate", err: ErrCardAlreadyLinked, want: false},
		{name: "unrelated", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrCardAlreadyLinked))
	assert.True(t, IsDuplicateError(ErrChallengeExists))
	assert.True(t, IsDuplicateError(NewStoreError("payment", "create", "payment id already used", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("with wrapped error", func(t *testing.T) {
		err := NewStoreError("linked_card", "link", "phone and card number are required", ErrInvalidEntity)
		assert.Equal(t,
			"linked_card link: phone and card number are required: invalid entity",
			err.Error())
		assert.ErrorIs(t, err, ErrInvalidEntity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("challenge", "create", "token collision", nil)
		assert.Equal(t, "challenge create: token collision", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("errors.As", func(t *testing.T) {
		var wrapped error = fmt.Errorf("outer: %w", NewStoreError("payment", "create", "bad", ErrDuplicate))
		var storeErr *StoreError
		assert.True(t, errors.As(wrapped, &storeErr))
		assert.Equal(t, "payment", storeErr.Entity)
		assert.Equal(t, "create", storeErr.Operation)
	})
}
