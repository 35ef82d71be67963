package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attempt-specific validation errors
var (
	ErrEmptyAttemptID         = errors.New("attempt ID cannot be empty")
	ErrEmptyAttemptSessionID  = errors.New("attempt session ID cannot be empty")
	ErrEmptyAttemptQuestionID = errors.New("attempt question ID cannot be empty")
)

// Attempt records a single answered question, including the mastery estimate
// before and after the Bayesian update. Attempts are the raw material for
// analytics and are never modified after creation.
type Attempt struct {
	ID            uuid.UUID `json:"id"`
	SessionID     uuid.UUID `json:"session_id"`
	UserID        uuid.UUID `json:"user_id"`
	QuestionID    string    `json:"question_id"`
	Subject       string    `json:"subject"`
	Skill         string    `json:"skill"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	MasteryBefore float64   `json:"mastery_before"`
	MasteryAfter  float64   `json:"mastery_after"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAttempt creates an Attempt for the given session and question.
func NewAttempt(
	sessionID, userID uuid.UUID,
	question *Question,
	userAnswer string,
	isCorrect bool,
	masteryBefore, masteryAfter float64,
) (*Attempt, error) {
	attempt := &Attempt{
		ID:            uuid.New(),
		SessionID:     sessionID,
		UserID:        userID,
		QuestionID:    question.ID,
		Subject:       question.Subject,
		Skill:         question.Skill,
		UserAnswer:    userAnswer,
		CorrectAnswer: question.CorrectAnswer,
		IsCorrect:     isCorrect,
		MasteryBefore: masteryBefore,
		MasteryAfter:  masteryAfter,
		CreatedAt:     time.Now().UTC(),
	}

	if err := attempt.Validate(); err != nil {
		return nil, err
	}

	return attempt, nil
}

// Validate checks if the Attempt has valid data.
func (a *Attempt) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAttemptID
	}

	if a.SessionID == uuid.Nil {
		return ErrEmptyAttemptSessionID
	}

	if a.QuestionID == "" {
		return ErrEmptyAttemptQuestionID
	}

	return nil
}
