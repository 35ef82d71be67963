package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
)

// AttemptStore defines the interface for answer attempt persistence.
// Attempts are append-only; there is no update or delete.
type AttemptStore interface {
	// Create saves a new attempt.
	Create(ctx context.Context, attempt *domain.Attempt) error

	// ListByUser returns the user's attempts, newest first, limited to the
	// given count. A non-positive limit returns all attempts.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Attempt, error)

	// ListBySession returns the attempts recorded in a session, oldest first.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error)

	// WithTx returns a new AttemptStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) AttemptStore
}
