package repo

import (
	"context"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollabSessionRepo interface {
	List(ctx context.Context) ([]model.CollaborationSession, error)
	Get(ctx context.Context, id uuid.UUID) (*model.CollaborationSession, error)
	Create(ctx context.Context, s *model.CollaborationSession, creator *model.User) error
	AddMember(ctx context.Context, id uuid.UUID, u *model.User) (*model.CollaborationSession, error)
	UpdateCode(ctx context.Context, id uuid.UUID, code string) (*model.CollaborationSession, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type collabSessionRepo struct{ db *gorm.DB }

func NewCollabSessionRepo(db *gorm.DB) CollabSessionRepo {
	return &collabSessionRepo{db: db}
}

func (r *collabSessionRepo) List(ctx context.Context) ([]model.CollaborationSession, error) {
	var items []model.CollaborationSession
	return items, r.db.WithContext(ctx).
		Preload("Users").
		Order("updated_at DESC, id DESC").
		Find(&items).Error
}

func (r *collabSessionRepo) Get(ctx context.Context, id uuid.UUID) (*model.CollaborationSession, error) {
	var s model.CollaborationSession
	if err := r.db.WithContext(ctx).Preload("Users").Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts the session and, when creator is set, its first membership row in one statement batch.
func (r *collabSessionRepo) Create(ctx context.Context, s *model.CollaborationSession, creator *model.User) error {
	if creator != nil {
		s.Users = []model.User{*creator}
	}
	return r.db.WithContext(ctx).
		Omit("Users.*").
		Create(s).Error
}

func (r *collabSessionRepo) AddMember(ctx context.Context, id uuid.UUID, u *model.User) (*model.CollaborationSession, error) {
	s := model.CollaborationSession{ID: id}
	if err := r.db.WithContext(ctx).Model(&s).Select("id").First(&s).Error; err != nil {
		return nil, err
	}
	// Append on an existing pair is a no-op because the join table key is (session, user).
	if err := r.db.WithContext(ctx).Model(&s).Omit("Users.*").Association("Users").Append(u); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateCode replaces the buffer wholesale. Concurrent writers are not serialized.
func (r *collabSessionRepo) UpdateCode(ctx context.Context, id uuid.UUID, code string) (*model.CollaborationSession, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CollaborationSession{}).
		Where("id = ?", id).
		Update("code", code)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, id)
}

func (r *collabSessionRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CollaborationSession{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}
