package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/platform/memory"
	"github.com/brightpath/adapt-api/internal/store"
)

func newStoredUser(t *testing.T, email, username string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, username, "securepassword", "")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$notarealhashbutlongenough"
	return user
}

func newPoolQuestion(id, skill string, difficulty domain.Difficulty) *domain.Question {
	return &domain.Question{
		ID:            id,
		Text:          "What is the answer to " + id + "?",
		CorrectAnswer: "42",
		Skill:         skill,
		Difficulty:    difficulty,
		Subject:       "math",
	}
}

func TestUserStoreCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewUserStore()

	user := newStoredUser(t, "learner@example.com", "learner")
	require.NoError(t, s.Create(ctx, user))

	got, err := s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	got, err = s.GetByEmail(ctx, "LEARNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = s.GetByUsername(ctx, "learner")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got.Name = "Renamed"
	require.NoError(t, s.Update(ctx, got))
	got, err = s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, s.Delete(ctx, user.ID))
	_, err = s.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.ErrorIs(t, s.Delete(ctx, user.ID), store.ErrUserNotFound)
}

func TestUserStoreDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewUserStore()

	require.NoError(t, s.Create(ctx, newStoredUser(t, "learner@example.com", "learner")))

	dupEmail := newStoredUser(t, "Learner@Example.com", "other")
	assert.ErrorIs(t, s.Create(ctx, dupEmail), store.ErrEmailExists)

	dupUsername := newStoredUser(t, "other@example.com", "LEARNER")
	assert.ErrorIs(t, s.Create(ctx, dupUsername), store.ErrUsernameExists)
}

func TestQuestionStoreListAndFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewQuestionStore()

	require.NoError(t, s.CreateBatch(ctx, []*domain.Question{
		newPoolQuestion("q1", "algebra", domain.DifficultyEasy),
		newPoolQuestion("q2", "algebra", domain.DifficultyHard),
		newPoolQuestion("q3", "geometry", domain.DifficultyMedium),
	}))

	all, err := s.List(ctx, store.QuestionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "q1", all[0].ID, "insertion order should be preserved")

	algebra, err := s.List(ctx, store.QuestionFilter{Skill: "algebra"})
	require.NoError(t, err)
	assert.Len(t, algebra, 2)

	hard, err := s.List(ctx, store.QuestionFilter{Skill: "algebra", Difficulty: domain.DifficultyHard})
	require.NoError(t, err)
	require.Len(t, hard, 1)
	assert.Equal(t, "q2", hard[0].ID)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	subjects, err := s.Subjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"math"}, subjects)

	skills, err := s.Skills(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "geometry"}, skills)
}

func TestQuestionStoreCreateBatchIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewQuestionStore()

	batch := []*domain.Question{newPoolQuestion("q1", "algebra", domain.DifficultyEasy)}
	require.NoError(t, s.CreateBatch(ctx, batch))
	require.NoError(t, s.CreateBatch(ctx, batch))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t,
		s.Create(ctx, newPoolQuestion("q1", "algebra", domain.DifficultyEasy)),
		store.ErrQuestionExists)
}

func TestQuestionStoreReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewQuestionStore()

	require.NoError(t, s.Create(ctx, newPoolQuestion("q1", "algebra", domain.DifficultyEasy)))

	got, err := s.GetByID(ctx, "q1")
	require.NoError(t, err)
	got.Skill = "mutated"

	fresh, err := s.GetByID(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "algebra", fresh.Skill)
}

func TestSessionStoreLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore()

	userID := uuid.New()
	session, err := domain.NewLearningSession(userID, "math", map[string]float64{"algebra": 0.3})
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, session))

	got, err := s.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Subject, got.Subject)

	updated := session.RecordAnswer("q1", "algebra", 0.69, time.Now().UTC())
	require.NoError(t, s.Update(ctx, updated))

	got, err = s.FindByUserAndSubject(ctx, userID, "math")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, got.AnsweredIDs)

	_, err = s.FindByUserAndSubject(ctx, userID, "history")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStoreFindReturnsLatest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore()

	userID := uuid.New()
	older, err := domain.NewLearningSession(userID, "math", nil)
	require.NoError(t, err)
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.Create(ctx, older))

	newer, err := domain.NewLearningSession(userID, "math", nil)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, newer))

	got, err := s.FindByUserAndSubject(ctx, userID, "math")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestAttemptStoreListing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewAttemptStore()

	sessionID := uuid.New()
	userID := uuid.New()
	q := newPoolQuestion("q1", "algebra", domain.DifficultyEasy)

	for i := 0; i < 3; i++ {
		attempt, err := domain.NewAttempt(sessionID, userID, q, "42", true, 0.3, 0.5)
		require.NoError(t, err)
		require.NoError(t, s.Create(ctx, attempt))
	}
	other, err := domain.NewAttempt(uuid.New(), uuid.New(), q, "0", false, 0.3, 0.24)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, other))

	byUser, err := s.ListByUser(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, byUser, 3)

	limited, err := s.ListByUser(ctx, userID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	bySession, err := s.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, bySession, 3)
}

func TestAssessmentStoreLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewAssessmentStore()

	userID := uuid.New()
	assessment, err := domain.NewAssessment(
		userID, "math", []string{"q1", "q2"}, map[string]float64{"algebra": 0.3})
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, assessment))

	updated, err := assessment.RecordAnswer("q1", "algebra", "42", true, 0.69, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, updated))

	got, err := s.GetByID(ctx, assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Len(t, got.Answers, 1)

	listed, err := s.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, assessment.ID, listed[0].ID)

	_, err = s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrAssessmentNotFound)
}
