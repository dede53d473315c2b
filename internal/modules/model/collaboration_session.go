package model

import (
	"time"

	"github.com/google/uuid"
)

// CollaborationSession holds one shared code buffer. Code is replaced wholesale on
// every save; concurrent savers race and the last write wins.
type CollaborationSession struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string    `gorm:"type:text;not null" json:"name"`
	Code     string    `gorm:"type:text;not null;default:''" json:"code"`
	Language string    `gorm:"type:text;not null;default:'javascript'" json:"language"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// CollaborationSession <-> User (many-to-many)
	Users []User `gorm:"many2many:collaboration_session_users;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"users,omitempty"`
}

func (CollaborationSession) TableName() string { return "collaboration_sessions" }
