package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightpath/adapt-api/internal/api"
	apiMiddleware "github.com/brightpath/adapt-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	learningHandler := api.NewLearningHandler(app.learningService)
	assessmentHandler := api.NewAssessmentHandler(app.assessmentService)
	questionHandler := api.NewQuestionHandler(app.questionService)
	analyticsHandler := api.NewAnalyticsHandler(app.analyticsService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", authHandler.Profile)

			// Question pool
			r.Get("/subjects", questionHandler.Subjects)
			r.Get("/subjects/{subject}/skills", questionHandler.Skills)
			r.Get("/questions", questionHandler.List)
			r.Post("/questions/generate", questionHandler.Generate)

			// Adaptive practice
			r.Post("/sessions", learningHandler.StartSession)
			r.Get("/sessions/{sessionID}/next", learningHandler.NextQuestion)
			r.Post("/sessions/{sessionID}/answers", learningHandler.SubmitAnswer)
			r.Get("/sessions/{sessionID}/progress", learningHandler.Progress)
			r.Get("/sessions/{sessionID}/attempts", learningHandler.Attempts)

			// Assessments
			r.Post("/assessments", assessmentHandler.Start)
			r.Get("/assessments", assessmentHandler.List)
			r.Get("/assessments/{assessmentID}/question", assessmentHandler.CurrentQuestion)
			r.Post("/assessments/{assessmentID}/answers", assessmentHandler.SubmitAnswer)
			r.Get("/assessments/{assessmentID}/results", assessmentHandler.Results)

			// Analytics
			r.Get("/analytics/overview", analyticsHandler.Overview)
			r.Get("/analytics/history", analyticsHandler.History)
			r.Get("/analytics/subjects/{subject}", analyticsHandler.SubjectAnalytics)
			r.Get("/analytics/subjects/{subject}/path", analyticsHandler.Path)
		})
	})

	// Service info and health check endpoints
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithJSON(w, r, http.StatusOK, map[string]string{
			"service": "adapt-api",
			"status":  "running",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
