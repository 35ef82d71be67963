package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors
var (
	ErrEmptySessionID      = errors.New("session ID cannot be empty")
	ErrEmptySessionUserID  = errors.New("session user ID cannot be empty")
	ErrEmptySessionSubject = errors.New("session subject cannot be empty")
)

// LearningSession tracks one adaptive practice run for a user: the per-skill
// mastery estimates and the questions already served.
type LearningSession struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	Subject        string             `json:"subject"`
	SkillMasteries map[string]float64 `json:"skill_masteries"`
	AnsweredIDs    []string           `json:"answered_ids"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewLearningSession creates a session for the given user and subject with
// the provided initial skill masteries.
func NewLearningSession(userID uuid.UUID, subject string, masteries map[string]float64) (*LearningSession, error) {
	now := time.Now().UTC()
	session := &LearningSession{
		ID:             uuid.New(),
		UserID:         userID,
		Subject:        subject,
		SkillMasteries: copyMasteries(masteries),
		AnsweredIDs:    []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the LearningSession has valid data.
func (s *LearningSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	if s.Subject == "" {
		return ErrEmptySessionSubject
	}

	return nil
}

// RecordAnswer returns a copy of the session with the question marked as
// answered and the skill mastery replaced. The receiver is not modified, so
// a caller-held session stays consistent if persistence fails.
func (s *LearningSession) RecordAnswer(questionID, skill string, newMastery float64, now time.Time) *LearningSession {
	updated := &LearningSession{
		ID:             s.ID,
		UserID:         s.UserID,
		Subject:        s.Subject,
		SkillMasteries: copyMasteries(s.SkillMasteries),
		AnsweredIDs:    make([]string, 0, len(s.AnsweredIDs)+1),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      now.UTC(),
	}

	updated.AnsweredIDs = append(updated.AnsweredIDs, s.AnsweredIDs...)
	updated.AnsweredIDs = append(updated.AnsweredIDs, questionID)
	updated.SkillMasteries[skill] = newMastery

	return updated
}

// Mastery returns the mastery estimate for a skill and whether it is tracked.
func (s *LearningSession) Mastery(skill string) (float64, bool) {
	m, ok := s.SkillMasteries[skill]
	return m, ok
}

// HasAnswered reports whether the question was already served in this session.
func (s *LearningSession) HasAnswered(questionID string) bool {
	for _, id := range s.AnsweredIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

func copyMasteries(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
