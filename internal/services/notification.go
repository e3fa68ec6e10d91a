package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskville/internal/models"
)

// Window ahead of a task's end date in which a due-soon reminder fires.
const dueSoonWindow = 24 * time.Hour

const defaultNotificationLimit = 20

// NotificationService maintains per-user in-app notifications: task
// assignments, due-date reminders and system announcements.
type NotificationService struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewNotificationService(logger *zap.Logger) *NotificationService {
	return &NotificationService{logger: logger, now: time.Now}
}

// Notify creates a notification for one user.
func (s *NotificationService) Notify(userID uint, typ, title, message, priority string) (*models.Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, inputErr("notification title must not be empty")
	}
	if typ == "" {
		typ = models.NotificationInfo
	}
	if !validStatus(typ, models.NotificationTypes) {
		return nil, inputErr("type must be one of: %s", strings.Join(models.NotificationTypes, ", "))
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validStatus(priority, models.NotificationPriorities) {
		return nil, inputErr("priority must be one of: %s", strings.Join(models.NotificationPriorities, ", "))
	}

	n := &models.Notification{
		UserID:   userID,
		Type:     typ,
		Title:    strings.TrimSpace(title),
		Message:  message,
		Priority: priority,
	}
	if err := models.DB.Create(n).Error; err != nil {
		return nil, err
	}

	s.logger.Info("notification created",
		zap.Uint("user_id", userID),
		zap.String("type", typ),
		zap.String("title", n.Title))
	return n, nil
}

// NotifyAssignment tells a task's assignee about the assignment. Tasks
// without an assignee are a no-op. The task itself is already saved when
// this runs, so a failed write only costs the feed entry.
func (s *NotificationService) NotifyAssignment(task *models.Task) {
	if task.AssigneeID == nil {
		return
	}

	n := &models.Notification{
		UserID:   *task.AssigneeID,
		Type:     models.NotificationTask,
		Title:    fmt.Sprintf("Task: %s", task.Name),
		Message:  "New task has been assigned to you",
		Priority: models.PriorityMedium,
		TaskID:   &task.ID,
	}
	if err := models.DB.Create(n).Error; err != nil {
		s.logger.Warn("failed to create assignment notification",
			zap.Uint("task_id", task.ID), zap.Error(err))
		return
	}

	s.logger.Info("assignment notification created",
		zap.Uint("user_id", *task.AssigneeID),
		zap.Uint("task_id", task.ID))
}

// Broadcast creates a system notification for every active user and
// returns how many were reached.
func (s *NotificationService) Broadcast(title, message, priority string) (int, error) {
	if strings.TrimSpace(title) == "" {
		return 0, inputErr("notification title must not be empty")
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validStatus(priority, models.NotificationPriorities) {
		return 0, inputErr("priority must be one of: %s", strings.Join(models.NotificationPriorities, ", "))
	}

	var users []models.User
	if err := models.DB.Where("active = ?", true).Find(&users).Error; err != nil {
		return 0, err
	}

	for _, user := range users {
		n := &models.Notification{
			UserID:   user.ID,
			Type:     models.NotificationSystem,
			Title:    strings.TrimSpace(title),
			Message:  message,
			Priority: priority,
		}
		if err := models.DB.Create(n).Error; err != nil {
			return 0, err
		}
	}

	s.logger.Info("system notification broadcast",
		zap.String("title", title),
		zap.Int("recipients", len(users)))
	return len(users), nil
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	var notifications []models.Notification
	err := models.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns how many of a user's notifications are unread.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := models.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one of the user's notifications as read. Other users'
// notifications are invisible here.
func (s *NotificationService) MarkRead(id, userID uint) (*models.Notification, error) {
	var n models.Notification
	err := models.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if !n.Read {
		now := s.now()
		n.Read = true
		n.ReadAt = &now
		if err := models.DB.Save(&n).Error; err != nil {
			return nil, err
		}
	}
	return &n, nil
}

// MarkAllRead marks every unread notification of a user as read and
// returns how many changed.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	now := s.now()
	res := models.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

// CheckDueTasks scans assigned, unfinished tasks and reminds assignees
// about those due within the next day or already overdue. A reminder is
// not repeated while an unread one for the same task exists. Returns how
// many reminders were created.
func (s *NotificationService) CheckDueTasks() (int, error) {
	now := s.now()

	var tasks []models.Task
	err := models.DB.
		Where("assignee_id IS NOT NULL AND end_date IS NOT NULL AND status != ?", models.TaskDone).
		Where("end_date < ?", now.Add(dueSoonWindow)).
		Find(&tasks).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range tasks {
		task := &tasks[i]

		var pending int64
		err := models.DB.Model(&models.Notification{}).
			Where("user_id = ? AND task_id = ? AND is_read = ?", *task.AssigneeID, task.ID, false).
			Count(&pending).Error
		if err != nil {
			return created, err
		}
		if pending > 0 {
			continue
		}

		message := "Task is due soon"
		priority := models.PriorityHigh
		if task.IsOverdue(now) {
			message = "Task is overdue"
			priority = models.PriorityCritical
		}

		n := &models.Notification{
			UserID:   *task.AssigneeID,
			Type:     models.NotificationTask,
			Title:    fmt.Sprintf("Task: %s", task.Name),
			Message:  message,
			Priority: priority,
			TaskID:   &task.ID,
		}
		if err := models.DB.Create(n).Error; err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		s.logger.Info("due task reminders created", zap.Int("count", created))
	}
	return created, nil
}
