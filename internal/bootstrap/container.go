package bootstrap

import (
	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/cache"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/db"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/httpclient"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/logger"
	mq "github.com/ZIXNRIXZ/Collabhub/internal/infra/queue"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/handler"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/repo"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
	"github.com/ZIXNRIXZ/Collabhub/internal/relay"
	"github.com/ZIXNRIXZ/Collabhub/internal/router"
	"github.com/ZIXNRIXZ/Collabhub/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, err
			}
		}
		if telemetry.Enabled(cfg) {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if telemetry.Enabled(cfg) {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				return nil, err
			}
		}
		return rdb, nil
	})

	// RabbitMQ publisher. An empty url turns event publishing off.
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		return mq.NewPublisher(mq.NewDialFunc(cfg), do.MustInvoke[*zap.Logger](i), cfg)
	})

	// Compile judge. An empty base url makes compileCode report unavailable.
	do.Provide(inj, func(i *do.Injector) (service.Compiler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Judge.BaseURL == "" {
			return nil, nil
		}
		return httpclient.NewJudgeClient(cfg, do.MustInvoke[*zap.Logger](i)), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.TaskRepo, error) {
		return repo.NewTaskRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.CollabSessionRepo, error) {
		return repo.NewCollabSessionRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.DeploymentLogRepo, error) {
		return repo.NewDeploymentLogRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(do.MustInvoke[repo.UserRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TaskService, error) {
		return service.NewTaskService(do.MustInvoke[repo.TaskRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.CollabService, error) {
		return service.NewCollabService(
			do.MustInvoke[repo.CollabSessionRepo](i),
			do.MustInvoke[service.Compiler](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DeploymentService, error) {
		return service.NewDeploymentService(
			do.MustInvoke[repo.DeploymentLogRepo](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Relay
	do.Provide(inj, func(i *do.Injector) (*relay.Hub, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		metrics, err := telemetry.NewRelayMetrics()
		if err != nil {
			return nil, err
		}
		opts := []relay.HubOption{relay.WithMetrics(metrics)}
		if cfg.Relay.ValidateSessions {
			opts = append(opts, relay.WithSessionChecker(do.MustInvoke[service.CollabService](i)))
		}
		return relay.NewHub(log, opts...), nil
	})
	do.Provide(inj, func(i *do.Injector) (*relay.Handler, error) {
		return relay.NewHandler(
			do.MustInvoke[*relay.Hub](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.AuthService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TaskHandler, error) {
		return handler.NewTaskHandler(do.MustInvoke[service.TaskService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.CollabHandler, error) {
		return handler.NewCollabHandler(do.MustInvoke[service.CollabService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DeploymentHandler, error) {
		return handler.NewDeploymentHandler(do.MustInvoke[service.DeploymentService](i)), nil
	})

	// Engine
	do.Provide(inj, func(i *do.Injector) (*gin.Engine, error) {
		return router.NewRouter(router.RouterDeps{
			Config:            do.MustInvoke[*config.Config](i),
			Log:               do.MustInvoke[*zap.Logger](i),
			Auth:              do.MustInvoke[service.AuthService](i),
			AuthHandler:       do.MustInvoke[*handler.AuthHandler](i),
			UserHandler:       do.MustInvoke[*handler.UserHandler](i),
			TaskHandler:       do.MustInvoke[*handler.TaskHandler](i),
			CollabHandler:     do.MustInvoke[*handler.CollabHandler](i),
			DeploymentHandler: do.MustInvoke[*handler.DeploymentHandler](i),
			RelayHandler:      do.MustInvoke[*relay.Handler](i),
		}), nil
	})
	return inj
}
