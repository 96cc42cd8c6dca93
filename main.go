package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/app"
	"github.com/Erkin33/Platform-sub000/internal/config"
	"github.com/Erkin33/Platform-sub000/internal/database"
	"github.com/Erkin33/Platform-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

var migrateDirection string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "social-review",
	Short: "Social activity submission review service",
	Long: `social-review runs the HTTP API for social-activity submissions:
students submit evidence per criterion, tutors, deputies and deans approve it
in turn, and administrators manage manual score adjustments.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
	Long: `Apply or roll back the PostgreSQL schema.

Examples:
  social-review migrate
  social-review migrate --direction down`,
	RunE: runMigrations,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDirection, "direction", "up", "direction of migration (up/down)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	application, err := app.New(startCtx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create application")
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	log.Info().
		Str("address", cfg.Server.Address).
		Str("storage", cfg.Storage.Driver).
		Str("instance_id", cfg.Server.InstanceID).
		Msg("Social review service started")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
			return err
		}
	}

	log.Info().Msg("Shutting down social review service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
		return err
	}

	log.Info().Msg("Social review service stopped")
	return nil
}

func runMigrations(cmd *cobra.Command, _ []string) error {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	migrator, err := database.NewMigrator(cfg.Database)
	if err != nil {
		return err
	}

	switch migrateDirection {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
		log.Info().Msg("Migrations rolled back successfully")
	default:
		return fmt.Errorf("invalid migration direction %q, use 'up' or 'down'", migrateDirection)
	}

	return nil
}
