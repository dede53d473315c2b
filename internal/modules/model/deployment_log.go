package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DeploymentStatusPending   = "pending"
	DeploymentStatusBuilding  = "building"
	DeploymentStatusTesting   = "testing"
	DeploymentStatusDeploying = "deploying"
	DeploymentStatusSuccess   = "success"
	DeploymentStatusFailed    = "failed"
)

// InProgressDeploymentStatuses are counted as in_progress by the stats endpoint.
var InProgressDeploymentStatuses = []string{
	DeploymentStatusPending,
	DeploymentStatusBuilding,
	DeploymentStatusTesting,
	DeploymentStatusDeploying,
}

// DeploymentLog is append-only. UserID is nullable so a log survives its actor.
type DeploymentLog struct {
	ID          uuid.UUID                    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status      string                       `gorm:"type:text;not null;index:ix_deployment_log_status" json:"status"`
	Message     *string                      `gorm:"type:text" json:"message"`
	Environment string                       `gorm:"type:text;not null;default:'staging'" json:"environment"`
	Branch      string                       `gorm:"type:text;not null;default:'main'" json:"branch"`
	Logs        datatypes.JSONType[[]string] `gorm:"type:jsonb;not null" swaggertype:"array,string" json:"logs"`
	UserID      *uuid.UUID                   `gorm:"type:uuid;index:ix_deployment_log_user_id" json:"user_id"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP;index:ix_deployment_log_created_at" json:"created_at"`

	// DeploymentLog <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE;" json:"-"`
}

func (DeploymentLog) TableName() string { return "deployment_logs" }

// DeploymentStats summarizes every log row by status.
type DeploymentStats struct {
	Total       int64   `json:"total"`
	Successful  int64   `json:"successful"`
	Failed      int64   `json:"failed"`
	InProgress  int64   `json:"in_progress"`
	SuccessRate float64 `json:"success_rate"`
}
