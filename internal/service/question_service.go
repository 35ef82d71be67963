package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/generation"
	"github.com/brightpath/adapt-api/internal/platform/logger"
	"github.com/brightpath/adapt-api/internal/store"
)

// QuestionService exposes the question pool and, when an LLM backend is
// configured, expands it with generated questions.
type QuestionService interface {
	// Subjects returns the distinct subjects in the pool, sorted.
	Subjects(ctx context.Context) ([]string, error)

	// Skills returns the distinct skills for a subject, sorted.
	Skills(ctx context.Context, subject string) ([]string, error)

	// List returns the questions matching the filter.
	List(ctx context.Context, filter store.QuestionFilter) ([]*domain.Question, error)

	// Generate creates new questions via the configured generator and adds
	// them to the pool.
	// Returns generation.ErrGenerationDisabled when no generator is wired.
	Generate(ctx context.Context, req generation.Request) ([]*domain.Question, error)
}

// questionServiceImpl implements the QuestionService interface.
type questionServiceImpl struct {
	questions store.QuestionStore
	generator generation.Generator
	logger    *slog.Logger
}

// NewQuestionService creates a new QuestionService.
// The generator may be nil, which disables the Generate operation.
func NewQuestionService(
	questions store.QuestionStore,
	generator generation.Generator,
	log *slog.Logger,
) (QuestionService, error) {
	if questions == nil {
		return nil, fmt.Errorf("question store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &questionServiceImpl{
		questions: questions,
		generator: generator,
		logger:    log.With(slog.String("component", "question_service")),
	}, nil
}

// Subjects implements QuestionService.Subjects.
func (s *questionServiceImpl) Subjects(ctx context.Context) ([]string, error) {
	return s.questions.Subjects(ctx)
}

// Skills implements QuestionService.Skills.
func (s *questionServiceImpl) Skills(ctx context.Context, subject string) ([]string, error) {
	return s.questions.Skills(ctx, subject)
}

// List implements QuestionService.List.
func (s *questionServiceImpl) List(ctx context.Context, filter store.QuestionFilter) ([]*domain.Question, error) {
	return s.questions.List(ctx, filter)
}

// Generate implements QuestionService.Generate.
func (s *questionServiceImpl) Generate(ctx context.Context, req generation.Request) ([]*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.generator == nil {
		return nil, generation.ErrGenerationDisabled
	}

	questions, err := s.generator.GenerateQuestions(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		return nil, NewServiceError("question", "generate", "failed to save generated questions", err)
	}

	log.Info("questions generated",
		slog.String("subject", req.Subject),
		slog.String("skill", req.Skill),
		slog.String("difficulty", string(req.Difficulty)),
		slog.Int("count", len(questions)))
	return questions, nil
}
