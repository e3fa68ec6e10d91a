package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"taskville/internal/config"
)

// Identity is the authenticated principal attached to a session.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is an in-memory authenticated session. Sessions live only for
// the process lifetime; a restart logs everyone out.
type Session struct {
	Token        string    `json:"-"`
	Identity     Identity  `json:"identity"`
	CSRFToken    string    `json:"csrf_token"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store holds active sessions keyed by token. Expired entries are evicted
// lazily on Validate and in bulk via Sweep; there is no background timer.
// Create and Validate hand out private copies, never the stored structs:
// two requests carrying the same token may otherwise read fields the store
// is rewriting under its mutex.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	timeout time.Duration
	sliding bool

	now func() time.Time
}

func NewStore(cfg config.SessionConfig) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  cfg.TimeoutDuration(),
		sliding:  cfg.Sliding,
		now:      time.Now,
	}
}

// Create generates a fresh token for the identity and registers the session.
func (s *Store) Create(identity Identity, csrfToken, ip, userAgent string) (*Session, error) {
	token, err := generateToken(32)
	if err != nil {
		return nil, err
	}
	return s.put(token, identity, csrfToken, ip, userAgent), nil
}

// put registers a session under the token and returns the caller's copy.
func (s *Store) put(token string, identity Identity, csrfToken, ip, userAgent string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		Token:        token,
		Identity:     identity,
		CSRFToken:    csrfToken,
		IPAddress:    ip,
		UserAgent:    userAgent,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.timeout),
	}
	s.sessions[token] = sess

	copied := *sess
	return &copied
}

// Validate returns a copy of the session for a token if it has not
// expired. Expired entries are evicted on the spot. In sliding mode
// validation counts as activity and pushes the expiry forward.
func (s *Store) Validate(token string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}

	now := s.now()
	if !now.Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil, false
	}

	sess.LastActivity = now
	if s.sliding {
		sess.ExpiresAt = now.Add(s.timeout)
	}

	copied := *sess
	return &copied, true
}

// Touch extends a live session's expiry without returning it.
func (s *Store) Touch(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return
	}
	now := s.now()
	if !now.Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return
	}
	sess.LastActivity = now
	sess.ExpiresAt = now.Add(s.timeout)
}

// Revoke removes a session immediately (explicit logout).
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// RevokeUser removes every session belonging to a user id, e.g. after a
// password change or deactivation.
func (s *Store) RevokeUser(userID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if sess.Identity.UserID == userID {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Sweep removes all expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Active returns a snapshot of the live sessions.
func (s *Store) Active() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if now.Before(sess.ExpiresAt) {
			out = append(out, *sess)
		}
	}
	return out
}

// Len returns the number of stored sessions, expired entries included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func generateToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
