package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/platform/logger"
	"github.com/brightpath/adapt-api/internal/store"
)

// SessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend. Skill masteries and
// the answered-question list are stored as JSONB columns; they are always
// read and written as a whole, so relational modelling buys nothing.
type SessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. If logger is nil, the default logger is used.
func NewSessionStore(db store.DBTX, log *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SessionStore{
		db:     db,
		logger: log.With(slog.String("component", "session_store")),
	}
}

// Ensure SessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.LearningSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	masteries, answered, err := marshalSessionState(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO learning_sessions (id, user_id, subject, skill_masteries, answered_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.Subject,
		masteries,
		answered,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	log.Info("session created successfully",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.String("subject", session.Subject))
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningSession, error) {
	query := `
		SELECT id, user_id, subject, skill_masteries, answered_ids, created_at, updated_at
		FROM learning_sessions
		WHERE id = $1
	`
	return s.scanSession(ctx, query, id)
}

// FindByUserAndSubject implements store.SessionStore.FindByUserAndSubject.
func (s *SessionStore) FindByUserAndSubject(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) (*domain.LearningSession, error) {
	query := `
		SELECT id, user_id, subject, skill_masteries, answered_ids, created_at, updated_at
		FROM learning_sessions
		WHERE user_id = $1 AND subject = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return s.scanSession(ctx, query, userID, subject)
}

// Update implements store.SessionStore.Update.
func (s *SessionStore) Update(ctx context.Context, session *domain.LearningSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return err
	}

	masteries, answered, err := marshalSessionState(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE learning_sessions
		SET skill_masteries = $2, answered_ids = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		masteries,
		answered,
		session.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// WithTx implements store.SessionStore.WithTx.
func (s *SessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return NewSessionStore(tx, s.logger)
}

func (s *SessionStore) scanSession(ctx context.Context, query string, args ...any) (*domain.LearningSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		session   domain.LearningSession
		masteries []byte
		answered  []byte
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&session.ID,
		&session.UserID,
		&session.Subject,
		&masteries,
		&answered,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if err := json.Unmarshal(masteries, &session.SkillMasteries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skill masteries: %w", err)
	}
	if err := json.Unmarshal(answered, &session.AnsweredIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answered IDs: %w", err)
	}

	return &session, nil
}

func marshalSessionState(session *domain.LearningSession) (masteries, answered []byte, err error) {
	masteries, err = json.Marshal(session.SkillMasteries)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal skill masteries: %w", err)
	}
	answered, err = json.Marshal(session.AnsweredIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal answered IDs: %w", err)
	}
	return masteries, answered, nil
}
