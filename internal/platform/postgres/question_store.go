package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/platform/logger"
	"github.com/brightpath/adapt-api/internal/store"
)

// QuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database as the storage backend.
type QuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewQuestionStore creates a new PostgreSQL implementation of the
// QuestionStore interface. If logger is nil, the default logger is used.
func NewQuestionStore(db store.DBTX, log *slog.Logger) *QuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &QuestionStore{
		db:     db,
		logger: log.With(slog.String("component", "question_store")),
	}
}

// Ensure QuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*QuestionStore)(nil)

const questionColumns = `id, text, options, correct_answer, skill, difficulty, subject`

// Create implements store.QuestionStore.Create.
func (s *QuestionStore) Create(ctx context.Context, question *domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := question.Validate(); err != nil {
		log.Warn("question validation failed during create",
			slog.String("error", err.Error()),
			slog.String("question_id", question.ID))
		return err
	}

	options, err := json.Marshal(question.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal question options: %w", err)
	}

	query := `
		INSERT INTO questions (id, text, options, correct_answer, skill, difficulty, subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		question.ID,
		question.Text,
		options,
		question.CorrectAnswer,
		question.Skill,
		question.Difficulty,
		question.Subject,
	)
	if err != nil {
		if IsUniqueViolation(err, "") {
			return store.ErrQuestionExists
		}
		log.Error("failed to create question",
			slog.String("error", err.Error()),
			slog.String("question_id", question.ID))
		return MapError(err)
	}

	return nil
}

// CreateBatch implements store.QuestionStore.CreateBatch. Conflicting IDs
// are skipped so repeated seeding is idempotent.
func (s *QuestionStore) CreateBatch(ctx context.Context, questions []*domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO questions (id, text, options, correct_answer, skill, difficulty, subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	for _, question := range questions {
		if err := question.Validate(); err != nil {
			return err
		}

		options, err := json.Marshal(question.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal question options: %w", err)
		}

		if _, err := s.db.ExecContext(
			ctx,
			query,
			question.ID,
			question.Text,
			options,
			question.CorrectAnswer,
			question.Skill,
			question.Difficulty,
			question.Subject,
		); err != nil {
			log.Error("failed to batch-create question",
				slog.String("error", err.Error()),
				slog.String("question_id", question.ID))
			return MapError(err)
		}
	}

	log.Info("question batch stored", slog.Int("count", len(questions)))
	return nil
}

// GetByID implements store.QuestionStore.GetByID.
func (s *QuestionStore) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	question, err := scanQuestion(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrQuestionNotFound
		}
		log.Error("failed to get question",
			slog.String("error", err.Error()),
			slog.String("question_id", id))
		return nil, MapError(err)
	}

	return question, nil
}

// List implements store.QuestionStore.List.
func (s *QuestionStore) List(ctx context.Context, filter store.QuestionFilter) ([]*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conditions []string
		args       []any
	)
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)))
	}
	if filter.Skill != "" {
		args = append(args, filter.Skill)
		conditions = append(conditions, fmt.Sprintf("skill = $%d", len(args)))
	}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", len(args)))
	}

	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list questions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	questions := make([]*domain.Question, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, MapError(err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return questions, nil
}

// Subjects implements store.QuestionStore.Subjects.
func (s *QuestionStore) Subjects(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT subject FROM questions ORDER BY subject`)
}

// Skills implements store.QuestionStore.Skills.
func (s *QuestionStore) Skills(ctx context.Context, subject string) ([]string, error) {
	if subject == "" {
		return s.distinct(ctx, `SELECT DISTINCT skill FROM questions ORDER BY skill`)
	}
	return s.distinct(ctx,
		`SELECT DISTINCT skill FROM questions WHERE subject = $1 ORDER BY skill`, subject)
}

// Count implements store.QuestionStore.Count.
func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM questions`).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.QuestionStore.WithTx.
func (s *QuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return NewQuestionStore(tx, s.logger)
}

func (s *QuestionStore) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, MapError(err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return values, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var (
		question domain.Question
		options  []byte
	)
	if err := row.Scan(
		&question.ID,
		&question.Text,
		&options,
		&question.CorrectAnswer,
		&question.Skill,
		&question.Difficulty,
		&question.Subject,
	); err != nil {
		return nil, err
	}

	if len(options) > 0 {
		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal question options: %w", err)
		}
	}

	return &question, nil
}
