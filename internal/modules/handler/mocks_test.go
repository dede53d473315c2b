package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ZIXNRIXZ/Collabhub/internal/infra/httpclient"
	"github.com/ZIXNRIXZ/Collabhub/internal/middleware"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

// withUser stands in for UserAuth in handler tests.
func withUser(u *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u != nil {
			middleware.SetUser(c, u)
		}
		c.Next()
	}
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, in service.CreateTaskInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, in service.UpdateTaskInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) UpdateStatus(ctx context.Context, in service.UpdateTaskStatusInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthOutput), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in service.LoginInput) (*service.AuthOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthOutput), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockCollabService struct {
	mock.Mock
}

func (m *MockCollabService) ListSessions(ctx context.Context) ([]model.CollaborationSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CollaborationSession), args.Error(1)
}

func (m *MockCollabService) CreateSession(ctx context.Context, in service.CreateSessionInput) (*model.CollaborationSession, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CollaborationSession), args.Error(1)
}

func (m *MockCollabService) JoinSession(ctx context.Context, id uuid.UUID, u *model.User) (*model.CollaborationSession, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CollaborationSession), args.Error(1)
}

func (m *MockCollabService) UpdateSessionCode(ctx context.Context, in service.UpdateSessionCodeInput) (*model.CollaborationSession, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CollaborationSession), args.Error(1)
}

func (m *MockCollabService) CompileCode(ctx context.Context, in service.CompileCodeInput) (*httpclient.CompileResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.CompileResult), args.Error(1)
}

func (m *MockCollabService) SessionExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockDeploymentService struct {
	mock.Mock
}

func (m *MockDeploymentService) GetLogs(ctx context.Context, in service.GetDeploymentLogsInput) (*service.GetDeploymentLogsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GetDeploymentLogsOutput), args.Error(1)
}

func (m *MockDeploymentService) GetStats(ctx context.Context) (*model.DeploymentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeploymentStats), args.Error(1)
}

func (m *MockDeploymentService) Trigger(ctx context.Context, in service.TriggerDeploymentInput) (*model.DeploymentLog, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeploymentLog), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, in service.UpdateProfileInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
