package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name"     validate:"omitempty,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
// Login accepts either the email address or the username.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// ProfileResponse defines the response for the user profile endpoint.
type ProfileResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// StartSessionRequest defines the payload for starting a learning session.
type StartSessionRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=100"`
}

// SessionResponse defines the response for session endpoints.
type SessionResponse struct {
	SessionID      uuid.UUID          `json:"session_id"`
	Subject        string             `json:"subject"`
	SkillMasteries map[string]float64 `json:"skill_masteries"`
	QuestionsDone  int                `json:"questions_done"`
	CreatedAt      time.Time          `json:"created_at"`
}

// QuestionResponse is the learner-facing view of a question. The correct
// answer is deliberately omitted.
type QuestionResponse struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options,omitempty"`
	Skill      string   `json:"skill"`
	Difficulty string   `json:"difficulty"`
	Subject    string   `json:"subject"`
}

// NextQuestionResponse defines the response for the next-question endpoint.
type NextQuestionResponse struct {
	Question *QuestionResponse `json:"question"`
	Reason   string            `json:"reason"`
}

// SubmitAnswerRequest defines the payload for answer submission endpoints.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"      validate:"required"`
}

// SubmitAnswerResponse defines the response after grading an answer.
type SubmitAnswerResponse struct {
	QuestionID    string  `json:"question_id"`
	IsCorrect     bool    `json:"is_correct"`
	CorrectAnswer string  `json:"correct_answer"`
	Skill         string  `json:"skill"`
	MasteryBefore float64 `json:"mastery_before"`
	MasteryAfter  float64 `json:"mastery_after"`
}

// StartAssessmentRequest defines the payload for starting an assessment.
type StartAssessmentRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=100"`
}

// AssessmentStepResponse is the learner-facing view of the assessment cursor.
type AssessmentStepResponse struct {
	AssessmentID uuid.UUID         `json:"assessment_id"`
	Question     *QuestionResponse `json:"question,omitempty"`
	Index        int               `json:"index"`
	Total        int               `json:"total"`
	Complete     bool              `json:"complete"`
}

// GenerateQuestionsRequest defines the payload for the question generation
// endpoint.
type GenerateQuestionsRequest struct {
	Subject    string `json:"subject"    validate:"required,min=1,max=100"`
	Skill      string `json:"skill"      validate:"required,min=1,max=100"`
	Difficulty string `json:"difficulty" validate:"required,oneof=very_easy easy medium hard"`
	Count      int    `json:"count"      validate:"omitempty,gte=1,lte=20"`
}

// toQuestionResponse strips the correct answer from a question for client
// consumption.
func toQuestionResponse(q *domain.Question) *QuestionResponse {
	if q == nil {
		return nil
	}
	return &QuestionResponse{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options,
		Skill:      q.Skill,
		Difficulty: string(q.Difficulty),
		Subject:    q.Subject,
	}
}
