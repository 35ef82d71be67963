package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/platform/memory"
	"github.com/brightpath/adapt-api/internal/store"
)

type analyticsFixture struct {
	svc      AnalyticsService
	attempts *memory.AttemptStore
	sessions *memory.SessionStore
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()

	f := &analyticsFixture{
		attempts: memory.NewAttemptStore(),
		sessions: memory.NewSessionStore(),
	}
	svc, err := NewAnalyticsService(f.attempts, f.sessions, testLogger())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func recordAttempt(t *testing.T, f *analyticsFixture, userID uuid.UUID, skill string, correct bool) {
	t.Helper()

	q := poolQuestion("q_"+skill, skill, domain.DifficultyMedium)
	attempt, err := domain.NewAttempt(uuid.New(), userID, q, "x", correct, 0.3, 0.5)
	require.NoError(t, err)
	require.NoError(t, f.attempts.Create(context.Background(), attempt))
}

func TestAnalyticsServiceHistory(t *testing.T) {
	t.Parallel()
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		recordAttempt(t, f, userID, "algebra", i%2 == 0)
	}
	recordAttempt(t, f, uuid.New(), "algebra", true)

	history, err := f.svc.History(ctx, userID, 3)
	require.NoError(t, err)
	assert.Len(t, history, 3, "limit caps the history")

	all, err := f.svc.History(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5, "other users' attempts are excluded")
}

func TestAnalyticsServiceSubjectAnalytics(t *testing.T) {
	t.Parallel()
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	recordAttempt(t, f, userID, "algebra", true)
	recordAttempt(t, f, userID, "algebra", true)
	recordAttempt(t, f, userID, "algebra", false)
	recordAttempt(t, f, userID, "geometry", false)

	session, err := domain.NewLearningSession(userID, "math", map[string]float64{
		"algebra":  0.7,
		"geometry": 0.35,
	})
	require.NoError(t, err)
	require.NoError(t, f.sessions.Create(ctx, session))

	analytics, err := f.svc.SubjectAnalytics(ctx, userID, "math")
	require.NoError(t, err)

	assert.Equal(t, 4, analytics.TotalAttempts)
	assert.Equal(t, 2, analytics.TotalCorrect)
	assert.InDelta(t, 50.0, analytics.Accuracy, 1e-9)

	require.Len(t, analytics.Skills, 2)
	algebra := analytics.Skills[0]
	geometry := analytics.Skills[1]

	assert.Equal(t, "algebra", algebra.Skill)
	assert.Equal(t, 3, algebra.Attempts)
	assert.Equal(t, 2, algebra.Correct)
	assert.InDelta(t, 66.666666, algebra.Accuracy, 0.001)
	assert.InDelta(t, 0.7, algebra.Mastery, 1e-9)

	assert.Equal(t, "geometry", geometry.Skill)
	assert.Equal(t, 1, geometry.Attempts)
	assert.InDelta(t, 0.35, geometry.Mastery, 1e-9)
}

func TestAnalyticsServiceSubjectAnalyticsNoSession(t *testing.T) {
	t.Parallel()
	f := newAnalyticsFixture(t)
	userID := uuid.New()

	recordAttempt(t, f, userID, "algebra", true)

	analytics, err := f.svc.SubjectAnalytics(context.Background(), userID, "math")
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.TotalAttempts)
	assert.InDelta(t, 0.0, analytics.Skills[0].Mastery, 1e-9, "no session means no mastery estimate")
}

func TestAnalyticsServiceOverview(t *testing.T) {
	t.Parallel()
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	recordAttempt(t, f, userID, "algebra", true)
	recordAttempt(t, f, userID, "algebra", false)
	recordAttempt(t, f, userID, "geometry", true)
	recordAttempt(t, f, uuid.New(), "algebra", true)

	session, err := domain.NewLearningSession(userID, "math", map[string]float64{
		"algebra":  0.8,
		"geometry": 0.4,
	})
	require.NoError(t, err)
	require.NoError(t, f.sessions.Create(ctx, session))

	overview, err := f.svc.Overview(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 3, overview.TotalAttempts)
	assert.Equal(t, 2, overview.TotalCorrect)
	assert.InDelta(t, 200.0/3.0, overview.Accuracy, 1e-9)

	require.Len(t, overview.Subjects, 1)
	math := overview.Subjects[0]
	assert.Equal(t, "math", math.Subject)
	assert.Equal(t, 3, math.Attempts)
	assert.Equal(t, 2, math.Correct)
	assert.InDelta(t, 0.6, math.AverageMastery, 1e-9)
}

func TestAnalyticsServiceOverviewEmpty(t *testing.T) {
	t.Parallel()
	f := newAnalyticsFixture(t)

	overview, err := f.svc.Overview(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, overview.TotalAttempts)
	assert.Zero(t, overview.Accuracy)
	assert.Empty(t, overview.Subjects)
}

func TestAnalyticsServicePath(t *testing.T) {
	t.Parallel()
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	session, err := domain.NewLearningSession(userID, "math", map[string]float64{
		"linear_equations": 0.2,
		"fractions":        0.55,
		"graphing":         0.9,
	})
	require.NoError(t, err)
	require.NoError(t, f.sessions.Create(ctx, session))

	path, err := f.svc.Path(ctx, userID, "math")
	require.NoError(t, err)

	require.Len(t, path.Modules, 3)
	assert.Equal(t, "linear_equations", path.Modules[0].Skill, "weakest skill first")
	assert.Equal(t, "remedial", path.Modules[0].Type)
	assert.Equal(t, "practice", path.Modules[1].Type)
	assert.Equal(t, "advanced", path.Modules[2].Type)
}

func TestAnalyticsServicePathNoSession(t *testing.T) {
	t.Parallel()
	f := newAnalyticsFixture(t)

	_, err := f.svc.Path(context.Background(), uuid.New(), "math")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
