package repository

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskville/internal/models"
)

// AuditWriter appends audit log rows. Failures are logged and swallowed;
// auditing must never fail the request it describes.
type AuditWriter struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAuditWriter(db *gorm.DB, logger *zap.Logger) *AuditWriter {
	return &AuditWriter{db: db, logger: logger}
}

func (w *AuditWriter) Record(userID uint, action, resource, resourceID, details, ip, userAgent string) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}
	if err := w.db.Create(entry).Error; err != nil {
		w.logger.Warn("failed to write audit log", zap.Error(err), zap.String("action", action))
	}
}

// Recent returns audit entries newer than the cutoff, newest first.
func (w *AuditWriter) Recent(since time.Time, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	q := w.db.Where("created_at >= ?", since).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
