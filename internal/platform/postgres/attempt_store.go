package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/platform/logger"
	"github.com/brightpath/adapt-api/internal/store"
)

// AttemptStore implements the store.AttemptStore interface
// using a PostgreSQL database as the storage backend.
type AttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAttemptStore creates a new PostgreSQL implementation of the
// AttemptStore interface. If logger is nil, the default logger is used.
func NewAttemptStore(db store.DBTX, log *slog.Logger) *AttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &AttemptStore{
		db:     db,
		logger: log.With(slog.String("component", "attempt_store")),
	}
}

// Ensure AttemptStore implements store.AttemptStore interface
var _ store.AttemptStore = (*AttemptStore)(nil)

const attemptColumns = `id, session_id, user_id, question_id, subject, skill,
	user_answer, correct_answer, is_correct, mastery_before, mastery_after, created_at`

// Create implements store.AttemptStore.Create.
func (s *AttemptStore) Create(ctx context.Context, attempt *domain.Attempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		log.Warn("attempt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()))
		return err
	}

	query := `
		INSERT INTO attempts (id, session_id, user_id, question_id, subject, skill,
			user_answer, correct_answer, is_correct, mastery_before, mastery_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		attempt.ID,
		attempt.SessionID,
		attempt.UserID,
		attempt.QuestionID,
		attempt.Subject,
		attempt.Skill,
		attempt.UserAnswer,
		attempt.CorrectAnswer,
		attempt.IsCorrect,
		attempt.MasteryBefore,
		attempt.MasteryAfter,
		attempt.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create attempt",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()))
		return MapError(err)
	}

	return nil
}

// ListByUser implements store.AttemptStore.ListByUser.
func (s *AttemptStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM attempts
		WHERE user_id = $1
		ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return s.listAttempts(ctx, query, args...)
}

// ListBySession implements store.AttemptStore.ListBySession.
func (s *AttemptStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM attempts
		WHERE session_id = $1
		ORDER BY created_at ASC`

	return s.listAttempts(ctx, query, sessionID)
}

// WithTx implements store.AttemptStore.WithTx.
func (s *AttemptStore) WithTx(tx *sql.Tx) store.AttemptStore {
	return NewAttemptStore(tx, s.logger)
}

func (s *AttemptStore) listAttempts(ctx context.Context, query string, args ...any) ([]*domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list attempts", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	attempts := make([]*domain.Attempt, 0)
	for rows.Next() {
		var attempt domain.Attempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.SessionID,
			&attempt.UserID,
			&attempt.QuestionID,
			&attempt.Subject,
			&attempt.Skill,
			&attempt.UserAnswer,
			&attempt.CorrectAnswer,
			&attempt.IsCorrect,
			&attempt.MasteryBefore,
			&attempt.MasteryAfter,
			&attempt.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		attempts = append(attempts, &attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return attempts, nil
}
