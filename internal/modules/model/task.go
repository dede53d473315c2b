package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusArchived   TaskStatus = "ARCHIVED"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusArchived}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

type Task struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:text;not null;default:'PENDING';check:status IN ('PENDING','IN_PROGRESS','COMPLETED','ARCHIVED');index:ix_task_user_id_status,priority:2" json:"status"`
	Priority    TaskPriority `gorm:"type:text;not null;default:'MEDIUM';check:priority IN ('LOW','MEDIUM','HIGH')" json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index:ix_task_user_id;index:ix_task_user_id_status,priority:1" json:"user_id"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Task <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Task) TableName() string { return "tasks" }
