package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/brightpath/adapt-api/internal/service"
)

// AssessmentHandler handles diagnostic assessment API requests.
type AssessmentHandler struct {
	assessmentService service.AssessmentService
	validator         *validator.Validate
}

// NewAssessmentHandler creates a new AssessmentHandler with the given
// dependencies.
func NewAssessmentHandler(assessmentService service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		validator:         validator.New(),
	}
}

// Start handles POST /assessments.
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req StartAssessmentRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	assessment, err := h.assessmentService.Start(r.Context(), userID, req.Subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	step, err := h.assessmentService.CurrentQuestion(r.Context(), userID, assessment.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, toAssessmentStepResponse(step))
}

// CurrentQuestion handles GET /assessments/{assessmentID}/question.
func (h *AssessmentHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	userID, assessmentID, ok := requireUserAndPathUUID(w, r, "assessmentID")
	if !ok {
		return
	}

	step, err := h.assessmentService.CurrentQuestion(r.Context(), userID, assessmentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, toAssessmentStepResponse(step))
}

// SubmitAnswer handles POST /assessments/{assessmentID}/answers.
func (h *AssessmentHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, assessmentID, ok := requireUserAndPathUUID(w, r, "assessmentID")
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

	step, err := h.assessmentService.SubmitAnswer(r.Context(), userID, assessmentID, req.QuestionID, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, toAssessmentStepResponse(step))
}

// Results handles GET /assessments/{assessmentID}/results.
func (h *AssessmentHandler) Results(w http.ResponseWriter, r *http.Request) {
	userID, assessmentID, ok := requireUserAndPathUUID(w, r, "assessmentID")
	if !ok {
		return
	}

	results, err := h.assessmentService.Results(r.Context(), userID, assessmentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, results)
}

// List handles GET /assessments.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	assessments, err := h.assessmentService.ListByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, assessments)
}

func toAssessmentStepResponse(step *service.AssessmentStep) AssessmentStepResponse {
	return AssessmentStepResponse{
		AssessmentID: step.AssessmentID,
		Question:     toQuestionResponse(step.Question),
		Index:        step.Index,
		Total:        step.Total,
		Complete:     step.Complete,
	}
}
