package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/config"
	"github.com/coachhub/coachapi/internal/db"
	"github.com/coachhub/coachapi/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Long:      `Apply all pending migrations (up, the default) or roll back the latest one (down).`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	dir, name := db.Up, "up"
	if len(args) == 1 && args[0] == "down" {
		dir, name = db.Down, "down"
	}

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, dir); err != nil {
		return err
	}
	logger.Info("database migrations applied", zap.String("direction", name), zap.String("path", cfg.MigrationsPath))
	return nil
}
