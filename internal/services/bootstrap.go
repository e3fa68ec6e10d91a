package services

import (
	"context"

	"go.uber.org/zap"

	"taskville/internal/auth"
	"taskville/internal/config"
	"taskville/internal/models"
)

// EnsureDefaultAdmin creates the configured admin account when the users
// table is empty, so a fresh install has a way in.
func EnsureDefaultAdmin(ctx context.Context, cfg *config.Config, authService *auth.Service, logger *zap.Logger) error {
	var count int64
	if err := models.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	role := cfg.DefaultUser.Role
	if role == "" {
		role = string(auth.RoleAdmin)
	}

	user, err := authService.Register(ctx, auth.RegisterInput{
		Username: cfg.DefaultUser.Username,
		Password: cfg.DefaultUser.Password,
		Email:    cfg.DefaultUser.Email,
		Role:     role,
	})
	if err != nil {
		return err
	}

	logger.Info("default admin created", zap.String("username", user.Username))
	return nil
}
