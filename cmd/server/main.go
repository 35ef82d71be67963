// Package main implements the entry point for the adaptive learning API
// server, which tracks per-skill mastery with Bayesian knowledge tracing and
// serves each learner the question they should see next.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/brightpath/adapt-api/internal/config"
	"github.com/brightpath/adapt-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	skipSeed := flag.Bool("skip-seed", false, "do not seed the question pool on startup")
	flag.Parse()

	if err := run(*migrateCmd, *skipSeed); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// run loads configuration, wires dependencies and starts the server (or
// executes a migration command and exits).
func run(migrateCmd string, skipSeed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"memory_mode", cfg.Database.UseMemory)

	ctx := context.Background()

	if migrateCmd != "" {
		if cfg.Database.UseMemory {
			return fmt.Errorf("migrations require a database URL")
		}
		db, err := setupDatabase(cfg, appLogger)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("failed to close database connection", "error", err)
			}
		}()
		if err := runMigrations(db, migrateCmd, appLogger); err != nil {
			return err
		}
		appLogger.Info("Migration command completed", "command", migrateCmd)
		return nil
	}

	app, err := initializeApp(ctx, cfg, appLogger, skipSeed)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

// initializeApp connects storage, wires the application and seeds the
// question pool.
func initializeApp(ctx context.Context, cfg *config.Config, appLogger *slog.Logger, skipSeed bool) (*application, error) {
	var db *sql.DB
	if !cfg.Database.UseMemory {
		var err error
		db, err = setupDatabase(cfg, appLogger)
		if err != nil {
			return nil, err
		}
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return nil, err
	}

	if !skipSeed {
		if err := seedQuestions(ctx, app.questionStore, appLogger); err != nil {
			return nil, err
		}
	}

	return app, nil
}
