package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AssessmentStatus tracks an assessment through its lifecycle.
type AssessmentStatus string

// Possible assessment status values
const (
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
)

// Assessment-specific validation errors
var (
	ErrEmptyAssessmentID       = errors.New("assessment ID cannot be empty")
	ErrEmptyAssessmentUserID   = errors.New("assessment user ID cannot be empty")
	ErrEmptyAssessmentSubject  = errors.New("assessment subject cannot be empty")
	ErrNoAssessmentQuestions   = errors.New("assessment must contain at least one question")
	ErrAssessmentComplete      = errors.New("assessment is already complete")
	ErrAssessmentNotComplete   = errors.New("assessment is not complete")
	ErrWrongAssessmentQuestion = errors.New("question does not match the current assessment step")
)

// AssessmentAnswer is one recorded answer within an assessment.
type AssessmentAnswer struct {
	UserAnswer string    `json:"user_answer"`
	IsCorrect  bool      `json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Assessment is a fixed-length diagnostic test. The question order is decided
// once at creation; answers advance a cursor through it.
type Assessment struct {
	ID             uuid.UUID                   `json:"id"`
	UserID         uuid.UUID                   `json:"user_id"`
	Subject        string                      `json:"subject"`
	QuestionIDs    []string                    `json:"question_ids"`
	CurrentIndex   int                         `json:"current_index"`
	Answers        map[string]AssessmentAnswer `json:"answers"`
	SkillMasteries map[string]float64          `json:"skill_masteries"`
	Status         AssessmentStatus            `json:"status"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	CompletedAt    *time.Time                  `json:"completed_at,omitempty"`
}

// NewAssessment creates an in-progress assessment over the given ordered
// question IDs with the provided initial skill masteries.
func NewAssessment(userID uuid.UUID, subject string, questionIDs []string, masteries map[string]float64) (*Assessment, error) {
	now := time.Now().UTC()
	assessment := &Assessment{
		ID:             uuid.New(),
		UserID:         userID,
		Subject:        subject,
		QuestionIDs:    append([]string(nil), questionIDs...),
		CurrentIndex:   0,
		Answers:        make(map[string]AssessmentAnswer),
		SkillMasteries: copyMasteries(masteries),
		Status:         AssessmentInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := assessment.Validate(); err != nil {
		return nil, err
	}

	return assessment, nil
}

// Validate checks if the Assessment has valid data.
func (a *Assessment) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAssessmentID
	}

	if a.UserID == uuid.Nil {
		return ErrEmptyAssessmentUserID
	}

	if a.Subject == "" {
		return ErrEmptyAssessmentSubject
	}

	if len(a.QuestionIDs) == 0 {
		return ErrNoAssessmentQuestions
	}

	return nil
}

// CurrentQuestionID returns the ID the learner should answer next.
// The boolean is false when all questions have been answered.
func (a *Assessment) CurrentQuestionID() (string, bool) {
	if a.CurrentIndex >= len(a.QuestionIDs) {
		return "", false
	}
	return a.QuestionIDs[a.CurrentIndex], true
}

// IsComplete reports whether every question has been answered.
func (a *Assessment) IsComplete() bool {
	return a.Status == AssessmentCompleted
}

// RecordAnswer returns a copy of the assessment with the answer recorded,
// the mastery estimate replaced, and the cursor advanced. The receiver is
// not modified. Returns ErrAssessmentComplete when the assessment is
// finished, and ErrWrongAssessmentQuestion when the question is not the
// current step.
func (a *Assessment) RecordAnswer(
	questionID, skill, userAnswer string,
	isCorrect bool,
	newMastery float64,
	now time.Time,
) (*Assessment, error) {
	if a.Status != AssessmentInProgress {
		return nil, ErrAssessmentComplete
	}

	current, ok := a.CurrentQuestionID()
	if !ok || current != questionID {
		return nil, ErrWrongAssessmentQuestion
	}

	updated := &Assessment{
		ID:             a.ID,
		UserID:         a.UserID,
		Subject:        a.Subject,
		QuestionIDs:    append([]string(nil), a.QuestionIDs...),
		CurrentIndex:   a.CurrentIndex + 1,
		Answers:        make(map[string]AssessmentAnswer, len(a.Answers)+1),
		SkillMasteries: copyMasteries(a.SkillMasteries),
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      now.UTC(),
		CompletedAt:    a.CompletedAt,
	}
	for id, answer := range a.Answers {
		updated.Answers[id] = answer
	}

	updated.Answers[questionID] = AssessmentAnswer{
		UserAnswer: userAnswer,
		IsCorrect:  isCorrect,
		AnsweredAt: now.UTC(),
	}
	updated.SkillMasteries[skill] = newMastery

	if updated.CurrentIndex >= len(updated.QuestionIDs) {
		updated.Status = AssessmentCompleted
		completedAt := now.UTC()
		updated.CompletedAt = &completedAt
	}

	return updated, nil
}
