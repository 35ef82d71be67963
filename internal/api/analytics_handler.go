package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/adapt-api/internal/service"
)

// AnalyticsHandler handles practice history and learning path API requests.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the given
// dependencies.
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// History handles GET /analytics/history. The optional limit query
// parameter caps the number of attempts returned.
func (h *AnalyticsHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	attempts, err := h.analyticsService.History(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

// Overview handles GET /analytics/overview.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	overview, err := h.analyticsService.Overview(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, overview)
}

// SubjectAnalytics handles GET /analytics/subjects/{subject}.
func (h *AnalyticsHandler) SubjectAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	subject := chi.URLParam(r, "subject")
	if subject == "" {
		RespondWithError(w, r, http.StatusBadRequest, "Subject is required")
		return
	}

	analytics, err := h.analyticsService.SubjectAnalytics(r.Context(), userID, subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, analytics)
}

// Path handles GET /analytics/subjects/{subject}/path.
func (h *AnalyticsHandler) Path(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	subject := chi.URLParam(r, "subject")
	if subject == "" {
		RespondWithError(w, r, http.StatusBadRequest, "Subject is required")
		return
	}

	path, err := h.analyticsService.Path(r.Context(), userID, subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, path)
}
