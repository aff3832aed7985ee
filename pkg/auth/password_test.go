package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"taskmanager/internal/core/port"
)

func TestPasswordHasher(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	assert.NoError(t, err)

	t.Run("should verify the original password", func(t *testing.T) {
		hash, err := hasher.Hash("12345678")

		assert.NoError(t, err)
		assert.True(t, hasher.Verify("12345678", hash))
		assert.False(t, hasher.Verify("87654321", hash))
	})

	t.Run("should salt every hash", func(t *testing.T) {
		first, _ := hasher.Hash("12345678")
		second, _ := hasher.Hash("12345678")

		assert.NotEqual(t, first, second)
	})

	t.Run("should not fail on a malformed hash", func(t *testing.T) {
		assert.False(t, hasher.Verify("12345678", "not-a-hash"))
	})

	t.Run("should reject passwords over 72 bytes", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("x", 73))

		assert.True(t, IsPasswordTooLong(err))
	})
}

func TestNewPasswordHasher(t *testing.T) {
	hasher, err := NewPasswordHasher(0)
	assert.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, hasher.cost)

	_, err = NewPasswordHasher(64)
	assert.Error(t, err)
}

func TestCredentials_HashPassword(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	assert.NoError(t, err)

	credentials := NewCredentials(hasher, nil)

	_, err = credentials.HashPassword(strings.Repeat("x", 73))
	assert.True(t, errors.Is(err, port.ErrPasswordTooLong))

	hash, err := credentials.HashPassword("12345678")
	assert.NoError(t, err)
	assert.True(t, credentials.VerifyPassword("12345678", hash))
}
