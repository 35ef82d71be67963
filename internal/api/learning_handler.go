package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/brightpath/adapt-api/internal/service"
)

// LearningHandler handles adaptive practice API requests.
type LearningHandler struct {
	learningService service.LearningService
	validator       *validator.Validate
}

// NewLearningHandler creates a new LearningHandler with the given dependencies.
func NewLearningHandler(learningService service.LearningService) *LearningHandler {
	return &LearningHandler{
		learningService: learningService,
		validator:       validator.New(),
	}
}

// StartSession handles POST /sessions. It finds or creates the user's
// session for a subject.
func (h *LearningHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req StartSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	session, err := h.learningService.StartSession(r.Context(), userID, req.Subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, SessionResponse{
		SessionID:      session.ID,
		Subject:        session.Subject,
		SkillMasteries: session.SkillMasteries,
		QuestionsDone:  len(session.AnsweredIDs),
		CreatedAt:      session.CreatedAt,
	})
}

// NextQuestion handles GET /sessions/{sessionID}/next.
func (h *LearningHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	decision, err := h.learningService.NextQuestion(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NextQuestionResponse{
		Question: toQuestionResponse(decision.Question),
		Reason:   decision.Reason,
	})
}

// SubmitAnswer handles POST /sessions/{sessionID}/answers.
func (h *LearningHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.learningService.SubmitAnswer(r.Context(), userID, sessionID, req.QuestionID, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, SubmitAnswerResponse{
		QuestionID:    result.QuestionID,
		IsCorrect:     result.IsCorrect,
		CorrectAnswer: result.CorrectAnswer,
		Skill:         result.Skill,
		MasteryBefore: result.MasteryBefore,
		MasteryAfter:  result.MasteryAfter,
	})
}

// Attempts handles GET /sessions/{sessionID}/attempts.
func (h *LearningHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	history, err := h.learningService.Attempts(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, history)
}

// Progress handles GET /sessions/{sessionID}/progress.
func (h *LearningHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	progress, err := h.learningService.Progress(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, progress)
}
