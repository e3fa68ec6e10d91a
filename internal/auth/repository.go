package auth

import (
	"context"
	"time"

	"taskville/internal/models"
)

// UserRepository is the narrow view of user storage the auth service
// needs. Lookups return (nil, nil) when no row matches; errors are
// reserved for infrastructure failures.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

// ResetRepository stores single-use password reset tokens.
type ResetRepository interface {
	Insert(ctx context.Context, reset *models.PasswordReset) error
	Find(ctx context.Context, id string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
}
