package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskville/internal/config"
)

func newTestStore(t *testing.T, sliding bool) (*Store, *time.Time) {
	t.Helper()
	store := NewStore(config.SessionConfig{Timeout: "1h", Sliding: sliding})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := &now
	store.now = func() time.Time { return *current }
	return store, current
}

var testIdentity = Identity{UserID: 1, Username: "alice123", Role: RoleUser}

func TestStoreCreateAndValidate(t *testing.T) {
	store, _ := newTestStore(t, false)

	sess, err := store.Create(testIdentity, "csrf", "127.0.0.1", "go-test")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, sess.CreatedAt.Add(time.Hour), sess.ExpiresAt)

	got, ok := store.Validate(sess.Token)
	require.True(t, ok)
	assert.Equal(t, testIdentity, got.Identity)
}

func TestStoreTokensAreUnique(t *testing.T) {
	store, _ := newTestStore(t, false)

	a, err := store.Create(testIdentity, "", "", "")
	require.NoError(t, err)
	b, err := store.Create(testIdentity, "", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestStoreLazyExpiry(t *testing.T) {
	store, clock := newTestStore(t, false)

	sess, err := store.Create(testIdentity, "", "", "")
	require.NoError(t, err)

	*clock = clock.Add(time.Hour)
	_, ok := store.Validate(sess.Token)
	assert.False(t, ok, "session expires exactly at expires-at")
	assert.Equal(t, 0, store.Len(), "expired entry is evicted on validate")
}

func TestStoreSlidingExpiry(t *testing.T) {
	store, clock := newTestStore(t, true)

	sess, err := store.Create(testIdentity, "", "", "")
	require.NoError(t, err)

	// Keep touching just before the timeout; the session must stay alive
	// well past the original absolute expiry.
	for i := 0; i < 3; i++ {
		*clock = clock.Add(59 * time.Minute)
		_, ok := store.Validate(sess.Token)
		require.True(t, ok)
	}

	*clock = clock.Add(61 * time.Minute)
	_, ok := store.Validate(sess.Token)
	assert.False(t, ok)
}

func TestStoreAbsoluteExpiryIgnoresActivity(t *testing.T) {
	store, clock := newTestStore(t, false)

	sess, err := store.Create(testIdentity, "", "", "")
	require.NoError(t, err)

	*clock = clock.Add(59 * time.Minute)
	_, ok := store.Validate(sess.Token)
	require.True(t, ok)

	*clock = clock.Add(2 * time.Minute)
	_, ok = store.Validate(sess.Token)
	assert.False(t, ok, "validation must not extend an absolute session")
}

func TestStoreRevoke(t *testing.T) {
	store, _ := newTestStore(t, false)

	sess, err := store.Create(testIdentity, "", "", "")
	require.NoError(t, err)

	store.Revoke(sess.Token)
	_, ok := store.Validate(sess.Token)
	assert.False(t, ok)

	// Revoking again is a no-op.
	store.Revoke(sess.Token)
}

func TestStoreRevokeUser(t *testing.T) {
	store, _ := newTestStore(t, false)

	s1, _ := store.Create(testIdentity, "", "", "")
	s2, _ := store.Create(testIdentity, "", "", "")
	other, _ := store.Create(Identity{UserID: 2, Username: "bob", Role: RoleDeveloper}, "", "", "")

	removed := store.RevokeUser(1)
	assert.Equal(t, 2, removed)

	_, ok := store.Validate(s1.Token)
	assert.False(t, ok)
	_, ok = store.Validate(s2.Token)
	assert.False(t, ok)
	_, ok = store.Validate(other.Token)
	assert.True(t, ok)
}

func TestStoreSweep(t *testing.T) {
	store, clock := newTestStore(t, false)

	store.Create(testIdentity, "", "", "")
	store.Create(testIdentity, "", "", "")
	*clock = clock.Add(30 * time.Minute)
	live, _ := store.Create(testIdentity, "", "", "")

	*clock = clock.Add(45 * time.Minute)
	removed := store.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())

	_, ok := store.Validate(live.Token)
	assert.True(t, ok)
}

func TestStoreHandsOutPrivateCopies(t *testing.T) {
	store, _ := newTestStore(t, true)

	sess, err := store.Create(testIdentity, "csrf", "", "")
	require.NoError(t, err)

	// Mutating a returned session must not reach the stored record.
	got, ok := store.Validate(sess.Token)
	require.True(t, ok)
	got.Identity.Username = "mallory"
	got.ExpiresAt = time.Time{}

	again, ok := store.Validate(sess.Token)
	require.True(t, ok)
	assert.Equal(t, "alice123", again.Identity.Username)
	assert.False(t, again.ExpiresAt.IsZero())
}

func TestStoreConcurrentValidate(t *testing.T) {
	store := NewStore(config.SessionConfig{Timeout: "1h", Sliding: true})
	sess, err := store.Create(testIdentity, "csrf", "", "")
	require.NoError(t, err)

	// Several requests carrying the same cookie hit the store at once;
	// reading the returned fields must be safe while sliding mode rewrites
	// expiry on every validation. Run with -race.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, ok := store.Validate(sess.Token)
				if !ok {
					t.Error("session disappeared")
					return
				}
				_ = got.ExpiresAt.Unix()
				_ = got.LastActivity
			}
		}()
	}
	wg.Wait()
}

func TestStoreTouchExtends(t *testing.T) {
	store, clock := newTestStore(t, false)

	sess, _ := store.Create(testIdentity, "", "", "")

	*clock = clock.Add(50 * time.Minute)
	store.Touch(sess.Token)

	*clock = clock.Add(30 * time.Minute)
	_, ok := store.Validate(sess.Token)
	assert.True(t, ok, "touch pushes the expiry forward even in absolute mode")
}
