package service

import (
	"context"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/infra/httpclient"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepo) Create(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepo) Get(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepo) Update(ctx context.Context, userID, id uuid.UUID, fields map[string]interface{}) (*model.Task, error) {
	args := m.Called(ctx, userID, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepo) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	args := m.Called(ctx, userID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockCollabSessionRepo struct {
	mock.Mock
}

func (m *MockCollabSessionRepo) List(ctx context.Context) ([]model.CollaborationSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CollaborationSession), args.Error(1)
}

func (m *MockCollabSessionRepo) Get(ctx context.Context, id uuid.UUID) (*model.CollaborationSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CollaborationSession), args.Error(1)
}

func (m *MockCollabSessionRepo) Create(ctx context.Context, s *model.CollaborationSession, creator *model.User) error {
	args := m.Called(ctx, s, creator)
	return args.Error(0)
}

func (m *MockCollabSessionRepo) AddMember(ctx context.Context, id uuid.UUID, u *model.User) (*model.CollaborationSession, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CollaborationSession), args.Error(1)
}

func (m *MockCollabSessionRepo) UpdateCode(ctx context.Context, id uuid.UUID, code string) (*model.CollaborationSession, error) {
	args := m.Called(ctx, id, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CollaborationSession), args.Error(1)
}

func (m *MockCollabSessionRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockDeploymentLogRepo struct {
	mock.Mock
}

func (m *MockDeploymentLogRepo) Create(ctx context.Context, l *model.DeploymentLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockDeploymentLogRepo) ListWithCursor(ctx context.Context, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.DeploymentLog, error) {
	args := m.Called(ctx, afterCreatedAt, afterID, limit, timeDesc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeploymentLog), args.Error(1)
}

func (m *MockDeploymentLogRepo) CountByStatus(ctx context.Context, statuses ...string) (int64, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).(int64), args.Error(1)
}

type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) Compile(ctx context.Context, code, language string) (*httpclient.CompileResult, error) {
	args := m.Called(ctx, code, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.CompileResult), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error {
	args := m.Called(ctx, exchangeName, routingKey, body)
	return args.Error(0)
}
