package repo

import (
	"context"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeploymentLogRepo is append-only: there is no update or delete.
type DeploymentLogRepo interface {
	Create(ctx context.Context, l *model.DeploymentLog) error
	ListWithCursor(ctx context.Context, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.DeploymentLog, error)
	CountByStatus(ctx context.Context, statuses ...string) (int64, error)
}

type deploymentLogRepo struct{ db *gorm.DB }

func NewDeploymentLogRepo(db *gorm.DB) DeploymentLogRepo {
	return &deploymentLogRepo{db: db}
}

func (r *deploymentLogRepo) Create(ctx context.Context, l *model.DeploymentLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *deploymentLogRepo) ListWithCursor(ctx context.Context, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.DeploymentLog, error) {
	q := r.db.WithContext(ctx).Model(&model.DeploymentLog{})

	// Apply cursor-based pagination filter if cursor is provided
	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		comparisonOp := ">"
		if timeDesc {
			comparisonOp = "<"
		}
		q = q.Where(
			"(created_at "+comparisonOp+" ?) OR (created_at = ? AND id "+comparisonOp+" ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	orderBy := "created_at ASC, id ASC"
	if timeDesc {
		orderBy = "created_at DESC, id DESC"
	}

	var items []model.DeploymentLog
	return items, q.Order(orderBy).Limit(limit).Find(&items).Error
}

// CountByStatus counts all rows when no status is given.
func (r *deploymentLogRepo) CountByStatus(ctx context.Context, statuses ...string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.DeploymentLog{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	return n, q.Count(&n).Error
}
