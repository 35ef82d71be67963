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

// AssessmentStore implements the store.AssessmentStore interface
// using a PostgreSQL database as the storage backend. Question order,
// answers and masteries live in JSONB columns; they change together on
// every answer, so a single-row model keeps updates atomic.
type AssessmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAssessmentStore creates a new PostgreSQL implementation of the
// AssessmentStore interface. If logger is nil, the default logger is used.
func NewAssessmentStore(db store.DBTX, log *slog.Logger) *AssessmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &AssessmentStore{
		db:     db,
		logger: log.With(slog.String("component", "assessment_store")),
	}
}

// Ensure AssessmentStore implements store.AssessmentStore interface
var _ store.AssessmentStore = (*AssessmentStore)(nil)

const assessmentColumns = `id, user_id, subject, question_ids, current_index,
	answers, skill_masteries, status, created_at, updated_at, completed_at`

// Create implements store.AssessmentStore.Create.
func (s *AssessmentStore) Create(ctx context.Context, assessment *domain.Assessment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assessment.Validate(); err != nil {
		log.Warn("assessment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessment.ID.String()))
		return err
	}

	questionIDs, answers, masteries, err := marshalAssessmentState(assessment)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assessments (id, user_id, subject, question_ids, current_index,
			answers, skill_masteries, status, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		assessment.ID,
		assessment.UserID,
		assessment.Subject,
		questionIDs,
		assessment.CurrentIndex,
		answers,
		masteries,
		assessment.Status,
		assessment.CreatedAt,
		assessment.UpdatedAt,
		assessment.CompletedAt,
	)
	if err != nil {
		log.Error("failed to create assessment",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessment.ID.String()))
		return MapError(err)
	}

	log.Info("assessment created successfully",
		slog.String("assessment_id", assessment.ID.String()),
		slog.String("user_id", assessment.UserID.String()),
		slog.Int("question_count", len(assessment.QuestionIDs)))
	return nil
}

// GetByID implements store.AssessmentStore.GetByID.
func (s *AssessmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`

	assessment, err := scanAssessment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAssessmentNotFound
		}
		log.Error("failed to get assessment",
			slog.String("error", err.Error()),
			slog.String("assessment_id", id.String()))
		return nil, MapError(err)
	}

	return assessment, nil
}

// Update implements store.AssessmentStore.Update.
func (s *AssessmentStore) Update(ctx context.Context, assessment *domain.Assessment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assessment.Validate(); err != nil {
		return err
	}

	questionIDs, answers, masteries, err := marshalAssessmentState(assessment)
	if err != nil {
		return err
	}

	query := `
		UPDATE assessments
		SET question_ids = $2, current_index = $3, answers = $4, skill_masteries = $5,
			status = $6, updated_at = $7, completed_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		assessment.ID,
		questionIDs,
		assessment.CurrentIndex,
		answers,
		masteries,
		assessment.Status,
		assessment.UpdatedAt,
		assessment.CompletedAt,
	)
	if err != nil {
		log.Error("failed to update assessment",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessment.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrAssessmentNotFound
	}

	return nil
}

// ListByUser implements store.AssessmentStore.ListByUser.
func (s *AssessmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list assessments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	assessments := make([]*domain.Assessment, 0)
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, MapError(err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return assessments, nil
}

// WithTx implements store.AssessmentStore.WithTx.
func (s *AssessmentStore) WithTx(tx *sql.Tx) store.AssessmentStore {
	return NewAssessmentStore(tx, s.logger)
}

func scanAssessment(row rowScanner) (*domain.Assessment, error) {
	var (
		assessment  domain.Assessment
		questionIDs []byte
		answers     []byte
		masteries   []byte
		status      string
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&assessment.ID,
		&assessment.UserID,
		&assessment.Subject,
		&questionIDs,
		&assessment.CurrentIndex,
		&answers,
		&masteries,
		&status,
		&assessment.CreatedAt,
		&assessment.UpdatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	assessment.Status = domain.AssessmentStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		assessment.CompletedAt = &t
	}

	if err := json.Unmarshal(questionIDs, &assessment.QuestionIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question IDs: %w", err)
	}
	if err := json.Unmarshal(answers, &assessment.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(masteries, &assessment.SkillMasteries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skill masteries: %w", err)
	}

	return &assessment, nil
}

func marshalAssessmentState(a *domain.Assessment) (questionIDs, answers, masteries []byte, err error) {
	questionIDs, err = json.Marshal(a.QuestionIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal question IDs: %w", err)
	}
	answers, err = json.Marshal(a.Answers)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	masteries, err = json.Marshal(a.SkillMasteries)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal skill masteries: %w", err)
	}
	return questionIDs, answers, masteries, nil
}
