// Package main runs the vocabulary drill server: HTTP and websocket access
// to drill sessions, with word statistics kept in PostgreSQL or in memory.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/vocab-drill/internal/config"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/platform/postgres"
)

func main() {
	configDir := flag.String("config-dir", ".", "directory holding config.yaml and .env")
	migrateCmd := flag.String("migrate", "",
		"run a migration command ("+strings.Join(postgres.MigrationCommands, ", ")+") and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configDir, *migrateCmd); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, configDir, migrateCmd string) error {
	cfg, err := config.LoadFrom(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("database", cfg.Database.Enabled()),
		slog.Int("max_sessions", cfg.Session.MaxActive))

	if migrateCmd != "" {
		return runMigrations(ctx, cfg, log, migrateCmd)
	}

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// setupDatabase opens and migrates the statistics database. It returns a nil
// db when no database is configured.
func setupDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	if !cfg.Database.Enabled() {
		return nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func runMigrations(ctx context.Context, cfg *config.Config, log *slog.Logger, command string) error {
	if !cfg.Database.Enabled() {
		return fmt.Errorf("migration command %q needs a database URL (%s)", command, config.EnvName("database.url"))
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.RunMigrationCommand(ctx, db, log, command)
}
