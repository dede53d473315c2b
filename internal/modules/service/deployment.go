package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/repo"
	"github.com/ZIXNRIXZ/Collabhub/internal/pkg/paging"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const deploymentStatsCacheKey = "collabhub:deployment:stats"

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error
}

type DeploymentService interface {
	GetLogs(ctx context.Context, in GetDeploymentLogsInput) (*GetDeploymentLogsOutput, error)
	GetStats(ctx context.Context) (*model.DeploymentStats, error)
	Trigger(ctx context.Context, in TriggerDeploymentInput) (*model.DeploymentLog, error)
}

type deploymentService struct {
	r         repo.DeploymentLogRepo
	redis     *redis.Client
	publisher EventPublisher
	cfg       *config.Config
	log       *zap.Logger
}

// NewDeploymentService works without redis (no stats cache) and without a
// publisher (no deployment events).
func NewDeploymentService(r repo.DeploymentLogRepo, rdb *redis.Client, publisher EventPublisher, cfg *config.Config, log *zap.Logger) DeploymentService {
	return &deploymentService{r: r, redis: rdb, publisher: publisher, cfg: cfg, log: log}
}

type GetDeploymentLogsInput struct {
	Limit    int    `json:"limit"`
	Cursor   string `json:"cursor"`
	TimeDesc bool   `json:"time_desc"`
}

type GetDeploymentLogsOutput struct {
	Items      []model.DeploymentLog `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
	HasMore    bool                  `json:"has_more"`
}

type TriggerDeploymentInput struct {
	UserID      *uuid.UUID `json:"-"`
	Environment string     `json:"environment" validate:"required,oneof=staging production"`
	Branch      string     `json:"branch" validate:"required,notblank,max=255"`
}

// DeploymentTriggeredEvent is published on the deployment exchange.
type DeploymentTriggeredEvent struct {
	DeploymentID uuid.UUID  `json:"deployment_id"`
	Environment  string     `json:"environment"`
	Branch       string     `json:"branch"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	TriggeredAt  time.Time  `json:"triggered_at"`
}

func (s *deploymentService) GetLogs(ctx context.Context, in GetDeploymentLogsInput) (*GetDeploymentLogsOutput, error) {
	if in.Limit <= 0 {
		in.Limit = 20
	}

	// Parse cursor (createdAt, id); an empty cursor indicates starting from the latest
	var afterT time.Time
	var afterID uuid.UUID
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	// Query limit+1 is used to determine has_more
	logs, err := s.r.ListWithCursor(ctx, afterT, afterID, in.Limit+1, in.TimeDesc)
	if err != nil {
		return nil, err
	}

	out := &GetDeploymentLogsOutput{
		Items:   logs,
		HasMore: false,
	}
	if len(logs) > in.Limit {
		out.HasMore = true
		out.Items = logs[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

func (s *deploymentService) GetStats(ctx context.Context) (*model.DeploymentStats, error) {
	if cached, ok := s.cachedStats(ctx); ok {
		return cached, nil
	}

	stats := &model.DeploymentStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.r.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Successful, err = s.r.CountByStatus(gctx, model.DeploymentStatusSuccess)
		return err
	})
	g.Go(func() (err error) {
		stats.Failed, err = s.r.CountByStatus(gctx, model.DeploymentStatusFailed)
		return err
	})
	g.Go(func() (err error) {
		stats.InProgress, err = s.r.CountByStatus(gctx, model.InProgressDeploymentStatuses...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		rate := float64(stats.Successful) / float64(stats.Total) * 100
		stats.SuccessRate = math.Round(rate*10) / 10
	}

	s.storeStats(ctx, stats)
	return stats, nil
}

func (s *deploymentService) Trigger(ctx context.Context, in TriggerDeploymentInput) (*model.DeploymentLog, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Deployment to %s from %s started", in.Environment, in.Branch)
	l := &model.DeploymentLog{
		Status:      model.DeploymentStatusBuilding,
		Message:     &msg,
		Environment: in.Environment,
		Branch:      in.Branch,
		Logs:        datatypes.NewJSONType([]string{"Starting build process..."}),
		UserID:      in.UserID,
	}
	if err := s.r.Create(ctx, l); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)

	if s.publisher != nil {
		ev := DeploymentTriggeredEvent{
			DeploymentID: l.ID,
			Environment:  l.Environment,
			Branch:       l.Branch,
			UserID:       l.UserID,
			TriggeredAt:  l.CreatedAt,
		}
		if err := s.publisher.PublishJSON(ctx, s.cfg.RabbitMQ.Exchange, s.cfg.RabbitMQ.RoutingKey, ev); err != nil {
			s.log.Error("failed to publish deployment event", zap.String("deployment_id", l.ID.String()), zap.Error(err))
		}
	}

	return l, nil
}

func (s *deploymentService) cachedStats(ctx context.Context) (*model.DeploymentStats, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, deploymentStatsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("stats cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var stats model.DeploymentStats
	if err := sonic.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (s *deploymentService) storeStats(ctx context.Context, stats *model.DeploymentStats) {
	if s.redis == nil || s.cfg.Stats.CacheTTL <= 0 {
		return
	}
	raw, err := sonic.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, deploymentStatsCacheKey, raw, s.cfg.Stats.CacheTTL).Err(); err != nil {
		s.log.Warn("stats cache write failed", zap.Error(err))
	}
}

func (s *deploymentService) invalidateStats(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, deploymentStatsCacheKey).Err(); err != nil {
		s.log.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
