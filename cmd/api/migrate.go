package main

import (
	"fmt"

	"printshop/internal/config"
	"printshop/internal/infra/db"
	"printshop/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Setup(cfg.LogLevel, cfg.IsProduction())

		gormDB, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("migration completed")
		return nil
	},
}
