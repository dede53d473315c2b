package main

import (
	"fmt"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/db"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err := logger.New(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		d, err := db.New(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := db.Migrate(d); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema up to date", zap.String("env", cfg.App.Env))
		return nil
	},
}
