package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/domain/bkt"
	"github.com/brightpath/adapt-api/internal/store"
)

// DefaultHistoryLimit caps attempt history queries that do not ask for a
// specific size.
const DefaultHistoryLimit = 50

// SkillStats is the per-skill accuracy over a set of attempts.
type SkillStats struct {
	Skill    string  `json:"skill"`
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	Mastery  float64 `json:"mastery"`
}

// UserAnalytics aggregates a user's practice history for a subject.
type UserAnalytics struct {
	Subject       string       `json:"subject"`
	TotalAttempts int          `json:"total_attempts"`
	TotalCorrect  int          `json:"total_correct"`
	Accuracy      float64      `json:"accuracy"`
	Skills        []SkillStats `json:"skills"`
}

// LearningPath is an ordered list of recommended learning modules for a
// subject, weakest skill first.
type LearningPath struct {
	Subject        string               `json:"subject"`
	SkillMasteries map[string]float64   `json:"skill_masteries"`
	Modules        []bkt.Recommendation `json:"modules"`
}

// SubjectOverview is the per-subject slice of the dashboard overview.
type SubjectOverview struct {
	Subject        string  `json:"subject"`
	Attempts       int     `json:"attempts"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
	AverageMastery float64 `json:"average_mastery"`
}

// Overview is the dashboard summary of a user's activity across all
// subjects they have practiced.
type Overview struct {
	TotalAttempts int               `json:"total_attempts"`
	TotalCorrect  int               `json:"total_correct"`
	Accuracy      float64           `json:"accuracy"`
	Subjects      []SubjectOverview `json:"subjects"`
}

// AnalyticsService reports on a user's practice history and derives
// recommended next steps from their mastery state.
type AnalyticsService interface {
	// History returns the user's recent attempts, newest first.
	// A non-positive limit applies DefaultHistoryLimit.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Attempt, error)

	// SubjectAnalytics aggregates the user's attempts for a subject into
	// per-skill accuracy statistics.
	SubjectAnalytics(ctx context.Context, userID uuid.UUID, subject string) (*UserAnalytics, error)

	// Path builds a recommended learning path from the user's current
	// mastery state for the subject.
	Path(ctx context.Context, userID uuid.UUID, subject string) (*LearningPath, error)

	// Overview summarizes the user's activity across every subject they
	// have practiced.
	Overview(ctx context.Context, userID uuid.UUID) (*Overview, error)
}

// analyticsServiceImpl implements the AnalyticsService interface.
type analyticsServiceImpl struct {
	attempts store.AttemptStore
	sessions store.SessionStore
	logger   *slog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	attempts store.AttemptStore,
	sessions store.SessionStore,
	log *slog.Logger,
) (AnalyticsService, error) {
	if attempts == nil {
		return nil, fmt.Errorf("attempt store cannot be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &analyticsServiceImpl{
		attempts: attempts,
		sessions: sessions,
		logger:   log.With(slog.String("component", "analytics_service")),
	}, nil
}

// History implements AnalyticsService.History.
func (s *analyticsServiceImpl) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Attempt, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.attempts.ListByUser(ctx, userID, limit)
}

// SubjectAnalytics implements AnalyticsService.SubjectAnalytics.
func (s *analyticsServiceImpl) SubjectAnalytics(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) (*UserAnalytics, error) {
	attempts, err := s.attempts.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, NewServiceError("analytics", "subject_analytics", "attempt lookup failed", err)
	}

	masteries := map[string]float64{}
	session, err := s.sessions.FindByUserAndSubject(ctx, userID, subject)
	if err == nil {
		masteries = session.SkillMasteries
	} else if !errors.Is(err, store.ErrSessionNotFound) {
		return nil, NewServiceError("analytics", "subject_analytics", "session lookup failed", err)
	}

	analytics := &UserAnalytics{Subject: subject, Skills: []SkillStats{}}
	bySkill := make(map[string]*SkillStats)
	for _, attempt := range attempts {
		if attempt.Subject != subject {
			continue
		}
		analytics.TotalAttempts++
		if attempt.IsCorrect {
			analytics.TotalCorrect++
		}

		stats, ok := bySkill[attempt.Skill]
		if !ok {
			stats = &SkillStats{Skill: attempt.Skill, Mastery: masteries[attempt.Skill]}
			bySkill[attempt.Skill] = stats
		}
		stats.Attempts++
		if attempt.IsCorrect {
			stats.Correct++
		}
	}

	if analytics.TotalAttempts > 0 {
		analytics.Accuracy = float64(analytics.TotalCorrect) / float64(analytics.TotalAttempts) * 100
	}

	for _, stats := range bySkill {
		if stats.Attempts > 0 {
			stats.Accuracy = float64(stats.Correct) / float64(stats.Attempts) * 100
		}
		analytics.Skills = append(analytics.Skills, *stats)
	}
	sort.Slice(analytics.Skills, func(i, j int) bool {
		return analytics.Skills[i].Skill < analytics.Skills[j].Skill
	})

	return analytics, nil
}

// Overview implements AnalyticsService.Overview.
func (s *analyticsServiceImpl) Overview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	attempts, err := s.attempts.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, NewServiceError("analytics", "overview", "attempt lookup failed", err)
	}

	overview := &Overview{Subjects: []SubjectOverview{}}
	bySubject := make(map[string]*SubjectOverview)
	for _, attempt := range attempts {
		overview.TotalAttempts++
		if attempt.IsCorrect {
			overview.TotalCorrect++
		}

		summary, ok := bySubject[attempt.Subject]
		if !ok {
			summary = &SubjectOverview{Subject: attempt.Subject}
			bySubject[attempt.Subject] = summary
		}
		summary.Attempts++
		if attempt.IsCorrect {
			summary.Correct++
		}
	}

	if overview.TotalAttempts > 0 {
		overview.Accuracy = float64(overview.TotalCorrect) / float64(overview.TotalAttempts) * 100
	}

	for subject, summary := range bySubject {
		if summary.Attempts > 0 {
			summary.Accuracy = float64(summary.Correct) / float64(summary.Attempts) * 100
		}

		session, err := s.sessions.FindByUserAndSubject(ctx, userID, subject)
		switch {
		case err == nil:
			summary.AverageMastery = averageMastery(session.SkillMasteries)
		case !errors.Is(err, store.ErrSessionNotFound):
			return nil, NewServiceError("analytics", "overview", "session lookup failed", err)
		}

		overview.Subjects = append(overview.Subjects, *summary)
	}
	sort.Slice(overview.Subjects, func(i, j int) bool {
		return overview.Subjects[i].Subject < overview.Subjects[j].Subject
	})

	return overview, nil
}

func averageMastery(masteries map[string]float64) float64 {
	if len(masteries) == 0 {
		return 0
	}
	var sum float64
	for _, mastery := range masteries {
		sum += mastery
	}
	return sum / float64(len(masteries))
}

// Path implements AnalyticsService.Path.
func (s *analyticsServiceImpl) Path(ctx context.Context, userID uuid.UUID, subject string) (*LearningPath, error) {
	session, err := s.sessions.FindByUserAndSubject(ctx, userID, subject)
	if err != nil {
		return nil, err
	}

	return &LearningPath{
		Subject:        subject,
		SkillMasteries: session.SkillMasteries,
		Modules:        bkt.GenerateRecommendations(session.SkillMasteries, subject),
	}, nil
}
