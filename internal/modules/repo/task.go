package repo

import (
	"context"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Create(ctx context.Context, t *model.Task) error
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, fields map[string]interface{}) (*model.Task, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.TaskStatus) (*model.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	var items []model.Task
	return items, r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taskRepo) Get(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	var t model.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update writes only the supplied columns. A row owned by someone else is reported as not found.
func (r *taskRepo) Update(ctx context.Context, userID, id uuid.UUID, fields map[string]interface{}) (*model.Task, error) {
	if len(fields) == 0 {
		return r.Get(ctx, userID, id)
	}
	res := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, userID, id)
}

func (r *taskRepo) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	return r.Update(ctx, userID, id, map[string]interface{}{"status": status})
}

func (r *taskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
