package auth

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"taskville/internal/config"
)

// Tracker counts failed login attempts per identifier over a sliding
// window and locks the identifier out once the threshold is reached.
// All check-then-act sequences run under the mutex so two concurrent
// attempts for the same identifier cannot race past the threshold.
type Tracker struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	locks    map[string]time.Time // identifier -> unlock-at

	threshold int
	window    time.Duration
	duration  time.Duration

	logger *zap.Logger
	now    func() time.Time
}

func NewTracker(cfg config.LockoutConfig, logger *zap.Logger) *Tracker {
	return &Tracker{
		attempts:  make(map[string][]time.Time),
		locks:     make(map[string]time.Time),
		threshold: cfg.Threshold,
		window:    cfg.WindowDuration(),
		duration:  cfg.LockDuration(),
		logger:    logger,
		now:       time.Now,
	}
}

// RecordFailure appends a failed attempt and locks the identifier once
// the count inside the trailing window reaches the threshold.
func (t *Tracker) RecordFailure(identifier string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	recent := t.pruneLocked(identifier, now)
	recent = append(recent, now)
	t.attempts[identifier] = recent

	if len(recent) >= t.threshold {
		t.locks[identifier] = now.Add(t.duration)
		t.logger.Warn("identifier locked out after repeated failures",
			zap.String("identifier", identifier),
			zap.Int("failures", len(recent)),
			zap.Duration("duration", t.duration))
	}
}

// RecordSuccess clears the failure history and any lock for the identifier.
func (t *Tracker) RecordSuccess(identifier string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, identifier)
	delete(t.locks, identifier)
}

// IsLocked reports whether the identifier is currently locked out.
// An expired lock is cleared, together with the stale failure count, so
// the next failure starts a fresh window.
func (t *Tracker) IsLocked(identifier string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isLockedLocked(identifier, t.now())
}

// RetryAfter returns the remaining lockout time, zero when not locked.
func (t *Tracker) RetryAfter(identifier string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.isLockedLocked(identifier, now) {
		return 0
	}
	return t.locks[identifier].Sub(now)
}

func (t *Tracker) isLockedLocked(identifier string, now time.Time) bool {
	unlockAt, ok := t.locks[identifier]
	if !ok {
		return false
	}
	if now.Before(unlockAt) {
		return true
	}
	delete(t.locks, identifier)
	delete(t.attempts, identifier)
	return false
}

// pruneLocked drops attempts older than the window. Caller holds the mutex.
func (t *Tracker) pruneLocked(identifier string, now time.Time) []time.Time {
	cutoff := now.Add(-t.window)
	var recent []time.Time
	for _, at := range t.attempts[identifier] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	return recent
}
