package models

import "time"

// Notification types.
const (
	NotificationInfo    = "info"
	NotificationTask    = "task"
	NotificationProject = "project"
	NotificationSystem  = "system"
)

// Notification priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var NotificationTypes = []string{NotificationInfo, NotificationTask, NotificationProject, NotificationSystem}

var NotificationPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

type Notification struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Type      string     `json:"type" gorm:"type:varchar(20);default:'info'"`
	Title     string     `json:"title" gorm:"type:varchar(200);not null"`
	Message   string     `json:"message" gorm:"type:text"`
	Priority  string     `json:"priority" gorm:"type:varchar(20);default:'medium'"`
	TaskID    *uint      `json:"task_id,omitempty" gorm:"index"`
	Read      bool       `json:"read" gorm:"column:is_read;default:false;index"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
