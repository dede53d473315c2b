package service

import (
	"context"
	"errors"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*model.User, error)
}

type userService struct {
	r repo.UserRepo
}

func NewUserService(r repo.UserRepo) UserService {
	return &userService{r: r}
}

type UpdateProfileInput struct {
	UserID    uuid.UUID `json:"-"`
	Name      *string   `json:"name" validate:"omitempty,max=100"`
	AvatarURL *string   `json:"avatar_url" validate:"omitempty,url"`
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*model.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.AvatarURL != nil {
		fields["avatar_url"] = *in.AvatarURL
	}

	u, err := s.r.UpdateProfile(ctx, in.UserID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
