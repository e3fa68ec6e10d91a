package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Project statuses. Kept as plain strings in the database so reports can
// group on them directly.
const (
	ProjectPlanning   = "Planning"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
	ProjectOnHold     = "On Hold"
	ProjectCancelled  = "Cancelled"
)

// Task statuses.
const (
	TaskToDo       = "To Do"
	TaskInProgress = "In Progress"
	TaskTesting    = "Testing"
	TaskDone       = "Done"
	TaskBlocked    = "Blocked"
)

var ProjectStatuses = []string{ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold, ProjectCancelled}

var TaskStatuses = []string{TaskToDo, TaskInProgress, TaskTesting, TaskDone, TaskBlocked}

type Project struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null;index"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:varchar(50);default:'Planning';index"`
	OwnerID     uint       `json:"owner_id" gorm:"index"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Owner       User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Tasks       []Task     `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
}

// IsActive reports whether the project still accepts work.
func (p *Project) IsActive() bool {
	return p.Status == ProjectPlanning || p.Status == ProjectInProgress
}

// IsOverdue reports whether the project passed its end date without closing.
func (p *Project) IsOverdue(now time.Time) bool {
	if p.EndDate == nil || p.Status == ProjectCompleted || p.Status == ProjectCancelled {
		return false
	}
	return now.After(*p.EndDate)
}

type Task struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	ProjectID   uint        `json:"project_id" gorm:"not null;index"`
	Name        string      `json:"name" gorm:"type:varchar(100);not null"`
	Description string      `json:"description" gorm:"type:text"`
	Status      string      `json:"status" gorm:"type:varchar(50);default:'To Do';index"`
	Progress    int         `json:"progress" gorm:"default:0"` // 0-100
	AssigneeID  *uint       `json:"assignee_id" gorm:"index"`
	Labels      StringArray `json:"labels" gorm:"type:json"`
	StartDate   *time.Time  `json:"start_date"`
	EndDate     *time.Time  `json:"end_date"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Project     Project     `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Assignee    *User       `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID"`
}

// IsOverdue reports whether the task passed its end date without being done.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.EndDate == nil || t.Status == TaskDone {
		return false
	}
	return now.After(*t.EndDate)
}

// StringArray is a custom type for JSON array storage
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}
