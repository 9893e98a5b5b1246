// Package main implements the entry point for the booking API server,
// which authenticates staff users and guards the users, roles and service
// catalog resources with role permissions.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/booking-api/internal/config"
	"github.com/phrazzld/booking-api/internal/platform/logger"
	"github.com/phrazzld/booking-api/internal/platform/postgres"
	"github.com/spf13/pflag"
)

func main() {
	migrateCmd := pflag.String("migrate", "",
		"run a migration command (up, down, reset, status, version) and exit")
	pflag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either executes a
// migration command or serves HTTP until SIGINT or SIGTERM.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"token_backend", cfg.Tokens.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, log)
		return postgres.Migrate(ctx, db, migrateCmd, log)
	}
	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, "up", log); err != nil {
			closeDatabase(db, log)
			return err
		}
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		closeDatabase(db, log)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.Run(ctx)
}
