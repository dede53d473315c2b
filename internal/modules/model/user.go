package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:uq_users_email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	Name         *string   `gorm:"type:text" json:"name"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// User <-> Task
	Tasks []Task `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// User <-> CollaborationSession (many-to-many)
	Sessions []CollaborationSession `gorm:"many2many:collaboration_session_users;" json:"-"`

	// User <-> DeploymentLog
	DeploymentLogs []DeploymentLog `gorm:"constraint:OnDelete:SET NULL,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }

// DisplayName falls back to the email when no name was set.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
