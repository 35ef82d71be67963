package generation

import (
	"context"

	"github.com/brightpath/adapt-api/internal/domain"
)

// Request describes the questions to generate.
type Request struct {
	Subject    string
	Skill      string
	Difficulty domain.Difficulty
	Count      int
}

// Generator defines the interface for generating practice questions.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Generator interface {
	// GenerateQuestions creates new multiple-choice questions for the given
	// subject, skill and difficulty. Implementations assign fresh question
	// IDs; the caller decides whether to add them to the pool.
	GenerateQuestions(ctx context.Context, req Request) ([]*domain.Question, error)
}
