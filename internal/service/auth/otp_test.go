package auth

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateOTP(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]+$`)

	for _, length := range []int{4, 6} {
		otp, err := GenerateOTP(length)
		require.NoError(t, err)
		assert.Len(t, otp, length)
		assert.Regexp(t, digits, otp)
	}

	_, err := GenerateOTP(0)
	assert.Error(t, err)
}

func TestBcryptOTPHasher(t *testing.T) {
	hasher := NewBcryptOTPHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	assert.NoError(t, hasher.Compare(hash, "123456"))
	assert.ErrorIs(t, hasher.Compare(hash, "654321"), ErrOTPMismatch)
	assert.Error(t, hasher.Compare("not-a-hash", "123456"))
}

func TestNewBcryptOTPHasher_InvalidCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptOTPHasher(1).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptOTPHasher(99).cost)
	assert.Equal(t, 5, NewBcryptOTPHasher(5).cost)
}
