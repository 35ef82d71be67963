package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
)

// SessionStore defines the interface for learning session persistence.
type SessionStore interface {
	// Create saves a new learning session.
	Create(ctx context.Context, session *domain.LearningSession) error

	// GetByID retrieves a session by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningSession, error)

	// FindByUserAndSubject retrieves the most recently updated session for
	// the user and subject.
	// Returns ErrSessionNotFound if no such session exists.
	FindByUserAndSubject(ctx context.Context, userID uuid.UUID, subject string) (*domain.LearningSession, error)

	// Update replaces the stored session state.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.LearningSession) error

	// WithTx returns a new SessionStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SessionStore
}
