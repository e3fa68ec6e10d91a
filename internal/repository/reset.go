package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"taskville/internal/models"
)

// ResetRepository stores password reset tokens, one row per token.
type ResetRepository struct {
	db *gorm.DB
}

func NewResetRepository(db *gorm.DB) *ResetRepository {
	return &ResetRepository{db: db}
}

func (r *ResetRepository) Insert(ctx context.Context, reset *models.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *ResetRepository) Find(ctx context.Context, id string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *ResetRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.PasswordReset{}).Where("id = ?", id).
		Update("used_at", at).Error
}

// PurgeExpired deletes tokens past their expiry, returning how many went.
func (r *ResetRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.PasswordReset{})
	return res.RowsAffected, res.Error
}
