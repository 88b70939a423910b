package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/persistence"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations to Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if cfg.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required to run migrations")
		}

		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()

		dir := cfg.Postgres.MigrationsDir
		if migrationsDir != "" {
			dir = migrationsDir
		}

		applied, err := persistence.RunMigrations(ctx, pg.Pool, dir, logger)
		if err != nil {
			return err
		}
		logger.Info("migrate finished", zap.Int("applied", applied), zap.String("dir", dir))
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "directory holding *.sql migrations (defaults to POSTGRES_MIGRATIONS_DIR)")
}
