package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	apiMiddleware "github.com/brightpath/adapt-api/internal/api/middleware"
	"github.com/brightpath/adapt-api/internal/config"
	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/domain/bkt"
	"github.com/brightpath/adapt-api/internal/platform/memory"
	"github.com/brightpath/adapt-api/internal/service"
	"github.com/brightpath/adapt-api/internal/service/auth"
)

// testEnv wires handlers over in-memory stores behind a real router, so
// tests exercise routing, middleware and JSON handling end to end.
type testEnv struct {
	router    http.Handler
	questions *memory.QuestionStore
	sessions  *memory.SessionStore
	jwt       auth.JWTService
	users     service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := memory.NewUserStore()
	questions := memory.NewQuestionStore()
	sessions := memory.NewSessionStore()
	attempts := memory.NewAttemptStore()
	assessments := memory.NewAssessmentStore()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-thats-long-enough!!",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 10080,
	})
	require.NoError(t, err)

	engine := bkt.NewDefaultService()

	userService, err := service.NewUserService(users, auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), log)
	require.NoError(t, err)
	learningService, err := service.NewLearningService(sessions, questions, attempts, engine, 0, log)
	require.NoError(t, err)
	assessmentService, err := service.NewAssessmentService(assessments, questions, engine, 4, log)
	require.NoError(t, err)
	analyticsService, err := service.NewAnalyticsService(attempts, sessions, log)
	require.NoError(t, err)
	questionService, err := service.NewQuestionService(questions, nil, log)
	require.NoError(t, err)

	authHandler := NewAuthHandler(userService, jwtService)
	learningHandler := NewLearningHandler(learningService)
	assessmentHandler := NewAssessmentHandler(assessmentService)
	questionHandler := NewQuestionHandler(questionService)
	analyticsHandler := NewAnalyticsHandler(analyticsService)
	authMw := apiMiddleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(apiMiddleware.TraceMiddleware)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMw.Authenticate)
			r.Get("/users/me", authHandler.Profile)
			r.Get("/subjects", questionHandler.Subjects)
			r.Get("/subjects/{subject}/skills", questionHandler.Skills)
			r.Get("/questions", questionHandler.List)
			r.Post("/questions/generate", questionHandler.Generate)
			r.Post("/sessions", learningHandler.StartSession)
			r.Get("/sessions/{sessionID}/next", learningHandler.NextQuestion)
			r.Post("/sessions/{sessionID}/answers", learningHandler.SubmitAnswer)
			r.Get("/sessions/{sessionID}/progress", learningHandler.Progress)
			r.Get("/sessions/{sessionID}/attempts", learningHandler.Attempts)
			r.Post("/assessments", assessmentHandler.Start)
			r.Get("/assessments", assessmentHandler.List)
			r.Get("/assessments/{assessmentID}/question", assessmentHandler.CurrentQuestion)
			r.Post("/assessments/{assessmentID}/answers", assessmentHandler.SubmitAnswer)
			r.Get("/assessments/{assessmentID}/results", assessmentHandler.Results)
			r.Get("/analytics/overview", analyticsHandler.Overview)
			r.Get("/analytics/history", analyticsHandler.History)
			r.Get("/analytics/subjects/{subject}", analyticsHandler.SubjectAnalytics)
			r.Get("/analytics/subjects/{subject}/path", analyticsHandler.Path)
		})
	})

	return &testEnv{
		router:    r,
		questions: questions,
		sessions:  sessions,
		jwt:       jwtService,
		users:     userService,
	}
}

// seedPool loads a small math pool covering two skills and all difficulties.
func (e *testEnv) seedPool(t *testing.T) {
	t.Helper()

	pool := []*domain.Question{
		testQuestion("a1", "algebra", domain.DifficultyVeryEasy),
		testQuestion("a2", "algebra", domain.DifficultyEasy),
		testQuestion("a3", "algebra", domain.DifficultyMedium),
		testQuestion("a4", "algebra", domain.DifficultyHard),
		testQuestion("g1", "geometry", domain.DifficultyVeryEasy),
		testQuestion("g2", "geometry", domain.DifficultyEasy),
		testQuestion("g3", "geometry", domain.DifficultyMedium),
		testQuestion("g4", "geometry", domain.DifficultyHard),
	}
	require.NoError(t, e.questions.CreateBatch(context.Background(), pool))
}

func testQuestion(id, skill string, difficulty domain.Difficulty) *domain.Question {
	return &domain.Question{
		ID:            id,
		Text:          "Question " + id,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: "a",
		Skill:         skill,
		Difficulty:    difficulty,
		Subject:       "math",
	}
}

// registerUser registers a user through the API and returns the access token.
func (e *testEnv) registerUser(t *testing.T, email, username string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var auth AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.AccessToken)
	return auth.AccessToken
}

// do performs a request against the test router. A non-empty token is sent
// as a bearer token; a nil body sends no payload.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}
