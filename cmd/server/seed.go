package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/store"
)

//go:embed sample_questions.json
var sampleQuestions []byte

// seedQuestions loads the embedded question bank into an empty pool. Seeding
// is idempotent: a non-empty pool is left untouched.
func seedQuestions(ctx context.Context, questions store.QuestionStore, logger *slog.Logger) error {
	count, err := questions.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		logger.Debug("question pool already populated", "count", count)
		return nil
	}

	var bank []*domain.Question
	if err := json.Unmarshal(sampleQuestions, &bank); err != nil {
		return fmt.Errorf("failed to parse embedded question bank: %w", err)
	}

	for _, q := range bank {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("embedded question %q is invalid: %w", q.ID, err)
		}
	}

	if err := questions.CreateBatch(ctx, bank); err != nil {
		return fmt.Errorf("failed to seed questions: %w", err)
	}

	logger.Info("Question pool seeded", "count", len(bank))
	return nil
}
