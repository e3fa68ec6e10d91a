package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"taskville/internal/auth"
	"taskville/internal/services"
)

// respondError maps the auth/service error taxonomy onto HTTP statuses.
// Infrastructure failures surface as a generic retryable message without
// leaking internals.
func respondError(c *gin.Context, err error) {
	var validationErr *auth.ValidationError
	var lockedErr *auth.AccountLockedError
	var permErr *auth.PermissionError
	var infraErr *auth.InfrastructureError
	var inputErr *services.InputError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(400, gin.H{"error": "Validation failed", "fields": validationErr.Fields})
	case errors.As(err, &inputErr):
		c.JSON(400, gin.H{"error": inputErr.Msg})
	case errors.Is(err, auth.ErrDuplicateUser):
		c.JSON(409, gin.H{"error": "Username or email already registered"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(401, gin.H{"error": "Invalid credentials"})
	case errors.As(err, &lockedErr):
		c.JSON(423, gin.H{
			"error":       "Account temporarily locked",
			"retry_after": int(lockedErr.RetryAfter.Round(time.Second).Seconds()),
		})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(401, gin.H{"error": "Invalid or expired token"})
	case errors.As(err, &permErr):
		c.JSON(403, gin.H{"error": "Forbidden: insufficient permissions"})
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLastAdmin):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.As(err, &infraErr):
		c.JSON(503, gin.H{"error": "Service temporarily unavailable, try again"})
	default:
		// Unexpected failures (the store, mostly) must not leak internals.
		c.JSON(503, gin.H{"error": "Service temporarily unavailable, try again"})
	}
}

// currentSession returns the session set by AuthMiddleware.
func currentSession(c *gin.Context) (*auth.Session, bool) {
	v, exists := c.Get("session")
	if !exists {
		return nil, false
	}
	sess, ok := v.(*auth.Session)
	return sess, ok
}
