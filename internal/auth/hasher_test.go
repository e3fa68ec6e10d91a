package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost, zap.NewNop())

	for _, password := range []string{"Str0ng!Pass", "x", "รหัสผ่าน"} {
		hash, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.True(t, hasher.Verify(password, hash))
		assert.False(t, hasher.Verify(password+"x", hash))
	}
}

func TestHasherEmptyPassword(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost, zap.NewNop())

	_, err := hasher.Hash("")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestHasherMalformedStoredHash(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost, zap.NewNop())

	assert.False(t, hasher.Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("anything", ""))
}

func TestHasherClampsOutOfRangeCost(t *testing.T) {
	hasher := NewHasher(99, zap.NewNop())

	hash, err := hasher.Hash("Str0ng!Pass")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}
