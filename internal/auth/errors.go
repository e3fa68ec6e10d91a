package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidCredentials is returned for both unknown users and wrong
	// passwords so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUser is returned when the username or email is taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidToken is returned for unknown, expired or already used
	// session and reset tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ValidationError collects per-field input problems. It is always
// recoverable by the caller (re-prompt with the messages).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AccountLockedError reports an active brute-force lockout.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, retry after %s", e.RetryAfter.Round(time.Second))
}

// PermissionError reports a role lacking a required permission.
type PermissionError struct {
	Role       Role
	Permission Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q lacks permission %q", e.Role, e.Permission)
}

// InfrastructureError wraps unexpected failures from the underlying user
// store. Callers should treat it as retryable for the request, never as a
// credential problem.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

func infraErr(op string, err error) error {
	return &InfrastructureError{Op: op, Err: err}
}
