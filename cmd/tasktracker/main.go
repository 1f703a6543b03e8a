package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/logger"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var envFiles []string
	root := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Task tracker API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFiles(envFiles...)
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *zap.Logger, *database.DatabasePool, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	pool, err := database.NewDatabasePool(cfg.PoolConfig())
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, pool, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, pool, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer pool.Close()

			if err := database.Migrate(pool.DB); err != nil {
				return err
			}
			log.Info("database migrated")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the demo accounts and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, pool, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer pool.Close()

			if !skipMigrate {
				if err := database.Migrate(pool.DB); err != nil {
					return err
				}
			}
			result, err := database.Seed(cmd.Context(), pool.DB, cfg.Auth.BCryptCost)
			if err != nil {
				return err
			}
			log.Info("database seeded",
				zap.Int("users", len(result.Users)),
				zap.Int("tasks", len(result.Tasks)),
				zap.Int("logs", result.Logs))

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetTitle("Seeded accounts (password: %s)", database.SeedPassword)
			tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role"})
			for _, u := range result.Users {
				tw.AppendRow(table.Row{u.ID, u.Name, u.Email, u.Role})
			}
			tw.AppendFooter(table.Row{"", "", "Tasks", len(result.Tasks)})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run migrations before seeding")
	return cmd
}
