package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/generation"
	"github.com/brightpath/adapt-api/internal/service"
	"github.com/brightpath/adapt-api/internal/store"
)

// QuestionHandler handles question pool API requests.
type QuestionHandler struct {
	questionService service.QuestionService
	validator       *validator.Validate
}

// NewQuestionHandler creates a new QuestionHandler with the given
// dependencies.
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		validator:       validator.New(),
	}
}

// Subjects handles GET /subjects.
func (h *QuestionHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.questionService.Subjects(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, map[string][]string{"subjects": subjects})
}

// Skills handles GET /subjects/{subject}/skills.
func (h *QuestionHandler) Skills(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	if subject == "" {
		RespondWithError(w, r, http.StatusBadRequest, "Subject is required")
		return
	}

	skills, err := h.questionService.Skills(r.Context(), subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, map[string][]string{"skills": skills})
}

// List handles GET /questions. Subject, skill and difficulty query
// parameters narrow the result.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.QuestionFilter{
		Subject: r.URL.Query().Get("subject"),
		Skill:   r.URL.Query().Get("skill"),
	}
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		difficulty, err := domain.ParseDifficulty(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		filter.Difficulty = difficulty
	}

	questions, err := h.questionService.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]*QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = toQuestionResponse(q)
	}
	RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"questions": responses,
		"count":     len(responses),
	})
}

// Generate handles POST /questions/generate.
func (h *QuestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuestionsRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	questions, err := h.questionService.Generate(r.Context(), generation.Request{
		Subject:    req.Subject,
		Skill:      req.Skill,
		Difficulty: difficulty,
		Count:      req.Count,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]*QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = toQuestionResponse(q)
	}
	RespondWithJSON(w, r, http.StatusCreated, map[string]interface{}{
		"questions": responses,
		"count":     len(responses),
	})
}
