package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/pkg/paging"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDeployConfig() *config.Config {
	return &config.Config{
		RabbitMQ: config.MQCfg{Exchange: "collabhub.deployment", RoutingKey: "deployment.triggered"},
		Stats:    config.StatsCfg{CacheTTL: 10 * time.Second},
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func noStatuses() interface{} {
	return mock.MatchedBy(func(s []string) bool { return len(s) == 0 })
}

func expectCounts(r *MockDeploymentLogRepo, total, ok, failed, running int64) {
	r.On("CountByStatus", mock.Anything, noStatuses()).Return(total, nil)
	r.On("CountByStatus", mock.Anything, []string{model.DeploymentStatusSuccess}).Return(ok, nil)
	r.On("CountByStatus", mock.Anything, []string{model.DeploymentStatusFailed}).Return(failed, nil)
	r.On("CountByStatus", mock.Anything, model.InProgressDeploymentStatuses).Return(running, nil)
}

func TestDeploymentService_GetLogs(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	logs := []model.DeploymentLog{
		{ID: uuid.New(), Status: model.DeploymentStatusSuccess, CreatedAt: now},
		{ID: uuid.New(), Status: model.DeploymentStatusFailed, CreatedAt: now.Add(-time.Second)},
		{ID: uuid.New(), Status: model.DeploymentStatusBuilding, CreatedAt: now.Add(-2 * time.Second)},
	}

	tests := []struct {
		name    string
		input   GetDeploymentLogsInput
		setup   func(*MockDeploymentLogRepo)
		wantErr error
		check   func(*testing.T, *GetDeploymentLogsOutput)
	}{
		{
			name:  "has more sets next cursor",
			input: GetDeploymentLogsInput{Limit: 2, TimeDesc: true},
			setup: func(r *MockDeploymentLogRepo) {
				r.On("ListWithCursor", ctx, time.Time{}, uuid.UUID{}, 3, true).Return(logs, nil)
			},
			check: func(t *testing.T, out *GetDeploymentLogsOutput) {
				assert.True(t, out.HasMore)
				assert.Len(t, out.Items, 2)
				ts, id, err := paging.DecodeCursor(out.NextCursor)
				require.NoError(t, err)
				assert.Equal(t, logs[1].ID, id)
				assert.True(t, logs[1].CreatedAt.Equal(ts))
			},
		},
		{
			name:  "last page",
			input: GetDeploymentLogsInput{Limit: 5},
			setup: func(r *MockDeploymentLogRepo) {
				r.On("ListWithCursor", ctx, time.Time{}, uuid.UUID{}, 6, false).Return(logs, nil)
			},
			check: func(t *testing.T, out *GetDeploymentLogsOutput) {
				assert.False(t, out.HasMore)
				assert.Empty(t, out.NextCursor)
				assert.Len(t, out.Items, 3)
			},
		},
		{
			name:    "bad cursor",
			input:   GetDeploymentLogsInput{Limit: 5, Cursor: "%%%"},
			setup:   func(r *MockDeploymentLogRepo) {},
			wantErr: ErrValidation,
		},
		{
			name:  "list failure",
			input: GetDeploymentLogsInput{Limit: 5},
			setup: func(r *MockDeploymentLogRepo) {
				r.On("ListWithCursor", ctx, time.Time{}, uuid.UUID{}, 6, false).Return(nil, errors.New("database error"))
			},
			wantErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &MockDeploymentLogRepo{}
			tt.setup(r)
			svc := NewDeploymentService(r, nil, nil, testDeployConfig(), zap.NewNop())

			out, err := svc.GetLogs(ctx, tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrValidation) {
					assert.ErrorIs(t, err, ErrValidation)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestDeploymentService_GetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("computes rate", func(t *testing.T) {
		r := &MockDeploymentLogRepo{}
		expectCounts(r, 8, 6, 1, 1)

		stats, err := NewDeploymentService(r, nil, nil, testDeployConfig(), zap.NewNop()).GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &model.DeploymentStats{Total: 8, Successful: 6, Failed: 1, InProgress: 1, SuccessRate: 75}, stats)
	})

	t.Run("empty table has zero rate", func(t *testing.T) {
		r := &MockDeploymentLogRepo{}
		expectCounts(r, 0, 0, 0, 0)

		stats, err := NewDeploymentService(r, nil, nil, testDeployConfig(), zap.NewNop()).GetStats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.SuccessRate)
	})

	t.Run("second call served from cache", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		r := &MockDeploymentLogRepo{}
		expectCounts(r, 3, 1, 1, 1)
		svc := NewDeploymentService(r, rdb, nil, testDeployConfig(), zap.NewNop())

		first, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.True(t, mr.Exists(deploymentStatsCacheKey))

		second, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		r.AssertNumberOfCalls(t, "CountByStatus", 4)
	})

	t.Run("cache expires", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		r := &MockDeploymentLogRepo{}
		expectCounts(r, 1, 1, 0, 0)
		svc := NewDeploymentService(r, rdb, nil, testDeployConfig(), zap.NewNop())

		_, err := svc.GetStats(ctx)
		require.NoError(t, err)
		mr.FastForward(11 * time.Second)
		_, err = svc.GetStats(ctx)
		require.NoError(t, err)
		r.AssertNumberOfCalls(t, "CountByStatus", 8)
	})
}

func TestDeploymentService_Trigger(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates building log, clears cache and publishes", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		require.NoError(t, mr.Set(deploymentStatsCacheKey, "{}"))

		r := &MockDeploymentLogRepo{}
		r.On("Create", ctx, mock.MatchedBy(func(l *model.DeploymentLog) bool {
			return l.Status == model.DeploymentStatusBuilding && l.Environment == "production" && l.Branch == "main"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.DeploymentLog).ID = uuid.New()
		}).Return(nil)

		pub := &MockPublisher{}
		pub.On("PublishJSON", ctx, "collabhub.deployment", "deployment.triggered", mock.AnythingOfType("service.DeploymentTriggeredEvent")).Return(nil)

		l, err := NewDeploymentService(r, rdb, pub, testDeployConfig(), zap.NewNop()).
			Trigger(ctx, TriggerDeploymentInput{UserID: &userID, Environment: "production", Branch: "main"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Starting build process..."}, l.Logs.Data())
		assert.False(t, mr.Exists(deploymentStatsCacheKey))
		pub.AssertExpectations(t)
	})

	t.Run("publish failure is not returned", func(t *testing.T) {
		r := &MockDeploymentLogRepo{}
		r.On("Create", ctx, mock.Anything).Return(nil)
		pub := &MockPublisher{}
		pub.On("PublishJSON", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))

		_, err := NewDeploymentService(r, nil, pub, testDeployConfig(), zap.NewNop()).
			Trigger(ctx, TriggerDeploymentInput{Environment: "staging", Branch: "dev"})
		assert.NoError(t, err)
	})

	t.Run("unknown environment rejected", func(t *testing.T) {
		r := &MockDeploymentLogRepo{}
		_, err := NewDeploymentService(r, nil, nil, testDeployConfig(), zap.NewNop()).
			Trigger(ctx, TriggerDeploymentInput{Environment: "qa", Branch: "main"})
		assert.ErrorIs(t, err, ErrValidation)
		r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
