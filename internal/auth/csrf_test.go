package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskville/internal/config"
)

func newTestMinter(t *testing.T) (*CSRFMinter, *time.Time) {
	t.Helper()
	minter := NewCSRFMinter(config.CSRFConfig{Secret: "test-secret", TTL: "1h", Issuer: "taskville-test"})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := &now
	minter.now = func() time.Time { return *current }
	return minter, current
}

func TestCSRFMintVerify(t *testing.T) {
	minter, _ := newTestMinter(t)

	token, err := minter.Mint("session-token")
	require.NoError(t, err)
	assert.True(t, minter.Verify(token, "session-token"))
}

func TestCSRFBoundToSession(t *testing.T) {
	minter, _ := newTestMinter(t)

	token, err := minter.Mint("session-a")
	require.NoError(t, err)
	assert.False(t, minter.Verify(token, "session-b"))
}

func TestCSRFExpiry(t *testing.T) {
	minter, clock := newTestMinter(t)

	token, err := minter.Mint("session-token")
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Hour)
	assert.False(t, minter.Verify(token, "session-token"))
}

func TestCSRFGarbageToken(t *testing.T) {
	minter, _ := newTestMinter(t)
	assert.False(t, minter.Verify("garbage", "session-token"))
	assert.False(t, minter.Verify("", "session-token"))
}

func TestCSRFWrongSecret(t *testing.T) {
	minter, _ := newTestMinter(t)
	other := NewCSRFMinter(config.CSRFConfig{Secret: "other-secret", TTL: "1h", Issuer: "taskville-test"})

	token, err := other.Mint("session-token")
	require.NoError(t, err)
	assert.False(t, minter.Verify(token, "session-token"))
}
