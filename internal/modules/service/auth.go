package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/repo"
	"github.com/ZIXNRIXZ/Collabhub/internal/pkg/utils/secrets"
	"github.com/ZIXNRIXZ/Collabhub/internal/pkg/utils/tokens"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, in LoginInput) (*AuthOutput, error)
	Authenticate(ctx context.Context, rawToken string) (*model.User, error)
}

type authService struct {
	r   repo.UserRepo
	cfg *config.Config
	log *zap.Logger
}

func NewAuthService(r repo.UserRepo, cfg *config.Config, log *zap.Logger) AuthService {
	return &authService{r: r, cfg: cfg, log: log}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthOutput struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthOutput, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := s.r.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := secrets.HashPassword(in.Password, s.cfg.Auth.Pepper)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Email: in.Email, PasswordHash: hash}
	if in.Name != "" {
		name := in.Name
		u.Name = &name
	}
	if err := s.r.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthOutput, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	u, err := s.r.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := secrets.VerifyPassword(in.Password, s.cfg.Auth.Pepper, u.PasswordHash)
	if err != nil {
		s.log.Warn("stored password hash unreadable", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *authService) Authenticate(ctx context.Context, rawToken string) (*model.User, error) {
	claims, err := tokens.Parse(s.cfg.Auth.JWTSecret, rawToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.r.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) issue(u *model.User) (*AuthOutput, error) {
	name := ""
	if u.Name != nil {
		name = *u.Name
	}
	tok, err := tokens.Issue(s.cfg.Auth.JWTSecret, u.ID, u.Email, name, s.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthOutput{Token: tok, User: u}, nil
}
