package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var sslmodeRegex = regexp.MustCompile(`(?i)\bsslmode\s*=\s*\w+`)

func New(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsnWithTLS(cfg.Database.DSN, cfg.Database.EnableTLS)), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return db, nil
}

// dsnWithTLS forces sslmode=require when TLS is enabled, replacing any existing sslmode.
func dsnWithTLS(dsn string, enableTLS bool) string {
	if !enableTLS {
		return dsn
	}
	if sslmodeRegex.MatchString(dsn) {
		return sslmodeRegex.ReplaceAllString(dsn, "sslmode=require")
	}
	if !strings.HasSuffix(dsn, " ") {
		dsn += " "
	}
	return dsn + "sslmode=require"
}

// Migrate creates or updates every CollabHub table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.CollaborationSession{},
		&model.DeploymentLog{},
	)
}

// RegisterOpenTelemetryPlugin registers the OpenTelemetry plugin for GORM.
// Call it after telemetry.SetupTracing so the global tracer provider is in place.
func RegisterOpenTelemetryPlugin(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin())
}
