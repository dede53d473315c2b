package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/bootstrap"
	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/cache"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
	"github.com/ZIXNRIXZ/Collabhub/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and realtime relay",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inj := bootstrap.BuildContainer()
	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	shutdownTelemetry := func(context.Context) error { return nil }
	if telemetry.Enabled(cfg) {
		if shutdownTelemetry, err = telemetry.Setup(cfg); err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
	}

	engine, err := do.Invoke[*gin.Engine](inj)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("collabhub listening", zap.String("addr", srv.Addr), zap.String("relay", cfg.Relay.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		closeDeps(inj, log)
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}

// closeDeps releases the broker and cache connections that were opened.
func closeDeps(inj *do.Injector, log *zap.Logger) {
	if pub, err := do.Invoke[service.EventPublisher](inj); err == nil {
		if c, ok := pub.(io.Closer); ok && c != nil {
			if err := c.Close(); err != nil {
				log.Warn("close publisher", zap.Error(err))
			}
		}
	}
	if rdb, err := do.Invoke[*redis.Client](inj); err == nil {
		if err := cache.Close(rdb); err != nil {
			log.Warn("close redis", zap.Error(err))
		}
	}
}
