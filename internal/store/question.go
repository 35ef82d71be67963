package store

import (
	"context"
	"database/sql"

	"github.com/brightpath/adapt-api/internal/domain"
)

// QuestionFilter narrows the question set returned by List. Zero-valued
// fields match everything.
type QuestionFilter struct {
	Subject    string
	Skill      string
	Difficulty domain.Difficulty
}

// QuestionStore defines the interface for question pool persistence.
type QuestionStore interface {
	// Create saves a new question to the pool.
	// Returns ErrQuestionExists if the ID is already taken.
	Create(ctx context.Context, question *domain.Question) error

	// CreateBatch saves multiple questions in one operation, used when
	// seeding the pool. Existing IDs are skipped rather than treated as
	// errors, so seeding is idempotent.
	CreateBatch(ctx context.Context, questions []*domain.Question) error

	// GetByID retrieves a question by its ID.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetByID(ctx context.Context, id string) (*domain.Question, error)

	// List returns all questions matching the filter.
	List(ctx context.Context, filter QuestionFilter) ([]*domain.Question, error)

	// Subjects returns the distinct subjects present in the pool, sorted.
	Subjects(ctx context.Context) ([]string, error)

	// Skills returns the distinct skills for a subject, sorted.
	Skills(ctx context.Context, subject string) ([]string, error)

	// Count returns the total number of questions in the pool.
	Count(ctx context.Context) (int, error)

	// WithTx returns a new QuestionStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) QuestionStore
}
