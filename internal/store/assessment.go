package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
)

// AssessmentStore defines the interface for assessment persistence.
type AssessmentStore interface {
	// Create saves a new assessment.
	Create(ctx context.Context, assessment *domain.Assessment) error

	// GetByID retrieves an assessment by its ID.
	// Returns ErrAssessmentNotFound if the assessment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error)

	// Update replaces the stored assessment state.
	// Returns ErrAssessmentNotFound if the assessment does not exist.
	Update(ctx context.Context, assessment *domain.Assessment) error

	// ListByUser returns the user's assessments, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error)

	// WithTx returns a new AssessmentStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) AssessmentStore
}
