package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZIXNRIXZ/Collabhub/internal/infra/httpclient"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Compiler runs code somewhere else and reports what happened.
type Compiler interface {
	Compile(ctx context.Context, code, language string) (*httpclient.CompileResult, error)
}

type CollabService interface {
	ListSessions(ctx context.Context) ([]model.CollaborationSession, error)
	CreateSession(ctx context.Context, in CreateSessionInput) (*model.CollaborationSession, error)
	JoinSession(ctx context.Context, id uuid.UUID, u *model.User) (*model.CollaborationSession, error)
	UpdateSessionCode(ctx context.Context, in UpdateSessionCodeInput) (*model.CollaborationSession, error)
	CompileCode(ctx context.Context, in CompileCodeInput) (*httpclient.CompileResult, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}

type collabService struct {
	r        repo.CollabSessionRepo
	compiler Compiler
	log      *zap.Logger
}

// NewCollabService accepts a nil compiler; CompileCode then reports ErrCompilerUnavailable.
func NewCollabService(r repo.CollabSessionRepo, compiler Compiler, log *zap.Logger) CollabService {
	return &collabService{r: r, compiler: compiler, log: log}
}

type CreateSessionInput struct {
	Creator  *model.User `json:"-"`
	Name     string      `json:"name" validate:"required,notblank,max=200"`
	Code     string      `json:"code"`
	Language string      `json:"language" validate:"omitempty,max=50"`
}

type UpdateSessionCodeInput struct {
	SessionID uuid.UUID `json:"-" validate:"required"`
	Code      string    `json:"code"`
}

type CompileCodeInput struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language" validate:"required,max=50"`
}

func (s *collabService) ListSessions(ctx context.Context) ([]model.CollaborationSession, error) {
	return s.r.List(ctx)
}

func (s *collabService) CreateSession(ctx context.Context, in CreateSessionInput) (*model.CollaborationSession, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	sess := &model.CollaborationSession{
		Name:     strings.TrimSpace(in.Name),
		Code:     in.Code,
		Language: in.Language,
	}
	if sess.Language == "" {
		sess.Language = "javascript"
	}
	if err := s.r.Create(ctx, sess, in.Creator); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *collabService) JoinSession(ctx context.Context, id uuid.UUID, u *model.User) (*model.CollaborationSession, error) {
	sess, err := s.r.AddMember(ctx, id, u)
	return sess, mapSessionErr(err)
}

// UpdateSessionCode overwrites the stored buffer. The last save wins.
func (s *collabService) UpdateSessionCode(ctx context.Context, in UpdateSessionCodeInput) (*model.CollaborationSession, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	sess, err := s.r.UpdateCode(ctx, in.SessionID, in.Code)
	return sess, mapSessionErr(err)
}

func (s *collabService) CompileCode(ctx context.Context, in CompileCodeInput) (*httpclient.CompileResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if s.compiler == nil {
		return nil, ErrCompilerUnavailable
	}
	res, err := s.compiler.Compile(ctx, in.Code, in.Language)
	if err != nil {
		if errors.Is(err, httpclient.ErrJudgeNotConfigured) {
			return nil, ErrCompilerUnavailable
		}
		s.log.Warn("compile request failed", zap.String("language", in.Language), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}
	return res, nil
}

// SessionExists treats a malformed id as an unknown session.
func (s *collabService) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return false, nil
	}
	return s.r.Exists(ctx, id)
}

func mapSessionErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	return err
}
