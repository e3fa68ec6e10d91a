package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskville/internal/auth"
	"taskville/internal/config"
	"taskville/internal/models"
	"taskville/internal/repository"
)

// setupTestDB initializes a fresh sqlite database for a test.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: filepath.Join(t.TempDir(), fmt.Sprintf("taskville_test_%d.db", time.Now().UnixNano())),
			},
		},
		Security: config.SecurityConfig{
			BcryptCost: bcrypt.MinCost,
			Password:   config.PasswordPolicy{MinLength: 8},
			Lockout:    config.LockoutConfig{Threshold: 5},
		},
		Session: config.SessionConfig{Timeout: "1h", Sliding: true},
		CSRF:    config.CSRFConfig{Secret: "test-secret", Issuer: "taskville-test"},
	}

	require.NoError(t, models.InitDB(cfg))
	t.Cleanup(func() {
		if models.DB != nil {
			if sqlDB, err := models.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		models.DB = nil
	})

	return cfg
}

func newTestAuthService(t *testing.T, cfg *config.Config) *auth.Service {
	t.Helper()
	return auth.NewService(cfg,
		repository.NewUserRepository(models.DB),
		repository.NewResetRepository(models.DB),
		zap.NewNop())
}

// seedUser inserts a user directly, bypassing the registration flow.
func seedUser(t *testing.T, username, role string, active bool) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Active:       active,
	}
	require.NoError(t, models.DB.Create(user).Error)
	return user
}

func seedProject(t *testing.T, svc *ProjectService, name string) *models.Project {
	t.Helper()
	project, err := svc.CreateProject(ProjectInput{Name: name}, 1)
	require.NoError(t, err)
	return project
}

func timePtr(v time.Time) *time.Time { return &v }

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

var testCtx = context.Background()
