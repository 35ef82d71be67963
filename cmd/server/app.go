package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/brightpath/adapt-api/internal/config"
	"github.com/brightpath/adapt-api/internal/domain/bkt"
	"github.com/brightpath/adapt-api/internal/generation"
	"github.com/brightpath/adapt-api/internal/platform/gemini"
	"github.com/brightpath/adapt-api/internal/platform/memory"
	"github.com/brightpath/adapt-api/internal/platform/postgres"
	"github.com/brightpath/adapt-api/internal/service"
	"github.com/brightpath/adapt-api/internal/service/auth"
	"github.com/brightpath/adapt-api/internal/store"
)

// application holds the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db *sql.DB // nil in memory mode

	userStore       store.UserStore
	questionStore   store.QuestionStore
	sessionStore    store.SessionStore
	attemptStore    store.AttemptStore
	assessmentStore store.AssessmentStore

	jwtService        auth.JWTService
	userService       service.UserService
	learningService   service.LearningService
	assessmentService service.AssessmentService
	analyticsService  service.AnalyticsService
	questionService   service.QuestionService
}

// newApplication wires stores and services from the configuration. The
// database handle may be nil, in which case in-memory stores are used.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	if db != nil {
		app.userStore = postgres.NewUserStore(db, logger)
		app.questionStore = postgres.NewQuestionStore(db, logger)
		app.sessionStore = postgres.NewSessionStore(db, logger)
		app.attemptStore = postgres.NewAttemptStore(db, logger)
		app.assessmentStore = postgres.NewAssessmentStore(db, logger)
	} else {
		logger.Warn("running with in-memory stores; state is lost on restart")
		app.userStore = memory.NewUserStore()
		app.questionStore = memory.NewQuestionStore()
		app.sessionStore = memory.NewSessionStore()
		app.attemptStore = memory.NewAttemptStore()
		app.assessmentStore = memory.NewAssessmentStore()
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	engine := bkt.NewServiceWithParams(bkt.NewParams(bkt.ParamsConfig{
		PInit:  cfg.Engine.PInit,
		PLearn: cfg.Engine.PLearn,
		PSlip:  cfg.Engine.PSlip,
		PGuess: cfg.Engine.PGuess,
	}))

	app.userService, err = service.NewUserService(
		app.userStore,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		auth.NewBcryptVerifier(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.learningService, err = service.NewLearningService(
		app.sessionStore,
		app.questionStore,
		app.attemptStore,
		engine,
		cfg.Engine.MasteryThreshold,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create learning service: %w", err)
	}

	app.assessmentService, err = service.NewAssessmentService(
		app.assessmentStore,
		app.questionStore,
		engine,
		cfg.Engine.AssessmentSize,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment service: %w", err)
	}

	app.analyticsService, err = service.NewAnalyticsService(app.attemptStore, app.sessionStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics service: %w", err)
	}

	// Question generation is optional; without an API key the endpoint
	// reports itself unavailable.
	var generator generation.Generator
	if cfg.LLM.GeminiAPIKey != "" {
		geminiGenerator, err := gemini.NewGenerator(ctx, logger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create question generator: %w", err)
		}
		generator = geminiGenerator
		logger.Info("Question generation enabled", "model", cfg.LLM.ModelName)
	} else {
		logger.Info("Question generation disabled; no Gemini API key configured")
	}

	app.questionService, err = service.NewQuestionService(app.questionStore, generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create question service: %w", err)
	}

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
