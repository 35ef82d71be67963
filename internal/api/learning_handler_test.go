package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/adapt-api/internal/domain"
)

func startSession(t *testing.T, env *testEnv, token, subject string) SessionResponse {
	t.Helper()

	resp := env.do(t, http.MethodPost, "/api/sessions", token, map[string]string{"subject": subject})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var session SessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	return session
}

func TestStartSessionEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	session := startSession(t, env, token, "math")
	assert.Equal(t, "math", session.Subject)
	assert.Len(t, session.SkillMasteries, 2)
	assert.InDelta(t, 0.3, session.SkillMasteries["algebra"], 1e-9)
	assert.InDelta(t, 0.3, session.SkillMasteries["geometry"], 1e-9)
	assert.Zero(t, session.QuestionsDone)

	// Starting again for the same subject resumes the existing session.
	resumed := startSession(t, env, token, "math")
	assert.Equal(t, session.SessionID, resumed.SessionID)
}

func TestStartSessionEndpointUnknownSubject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	resp := env.do(t, http.MethodPost, "/api/sessions", token, map[string]string{"subject": "underwater basket weaving"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestNextQuestionEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")
	session := startSession(t, env, token, "math")

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%s/next", session.SessionID), token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var next NextQuestionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &next))
	require.NotNil(t, next.Question)
	assert.Equal(t, "math", next.Question.Subject)
	assert.Contains(t, next.Reason, "Targeting weak skill")
	assert.NotContains(t, resp.Body.String(), "correct_answer", "answers must never leak to the client")
}

func TestNextQuestionEndpointUnknownSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%s/next", uuid.New()), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")
	session := startSession(t, env, token, "math")

	answersPath := fmt.Sprintf("/api/sessions/%s/answers", session.SessionID)

	t.Run("correct answer raises mastery", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": "a2",
			"answer":      " A ",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var result SubmitAnswerResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
		assert.True(t, result.IsCorrect)
		assert.Equal(t, "a", result.CorrectAnswer)
		assert.Equal(t, "algebra", result.Skill)
		assert.InDelta(t, 0.3, result.MasteryBefore, 1e-9)
		assert.Greater(t, result.MasteryAfter, result.MasteryBefore)
	})

	t.Run("wrong answer lowers mastery", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": "g2",
			"answer":      "d",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var result SubmitAnswerResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
		assert.False(t, result.IsCorrect)
		assert.Less(t, result.MasteryAfter, result.MasteryBefore)
	})

	t.Run("question from another subject", func(t *testing.T) {
		other := testQuestion("sci1", "forces", domain.DifficultyMedium)
		other.Subject = "science"
		require.NoError(t, env.questions.Create(context.Background(), other))

		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": "sci1",
			"answer":      "a",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown question", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": "missing",
			"answer":      "a",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestSessionAttemptsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")
	session := startSession(t, env, token, "math")

	answersPath := fmt.Sprintf("/api/sessions/%s/answers", session.SessionID)
	for id, answer := range map[string]string{"a1": "a", "g1": "c"} {
		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": id,
			"answer":      answer,
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%s/attempts", session.SessionID), token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var history struct {
		SessionID uuid.UUID `json:"session_id"`
		Attempts  []struct {
			QuestionID string `json:"question_id"`
			IsCorrect  bool   `json:"is_correct"`
		} `json:"attempts"`
		Total    int     `json:"total"`
		Correct  int     `json:"correct"`
		Accuracy float64 `json:"accuracy"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &history))
	assert.Equal(t, session.SessionID, history.SessionID)
	assert.Equal(t, 2, history.Total)
	assert.Equal(t, 1, history.Correct)
	assert.InDelta(t, 50.0, history.Accuracy, 1e-9)
	assert.Len(t, history.Attempts, 2)
}

func TestProgressEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")
	session := startSession(t, env, token, "math")

	answersPath := fmt.Sprintf("/api/sessions/%s/answers", session.SessionID)
	for _, id := range []string{"a1", "a2", "g1"} {
		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": id,
			"answer":      "a",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%s/progress", session.SessionID), token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var progress struct {
		SessionID      uuid.UUID          `json:"session_id"`
		Subject        string             `json:"subject"`
		QuestionsDone  int                `json:"questions_done"`
		SkillMasteries map[string]float64 `json:"skill_masteries"`
		AverageMastery float64            `json:"average_mastery"`
		MasteredSkills []string           `json:"mastered_skills"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &progress))
	assert.Equal(t, session.SessionID, progress.SessionID)
	assert.Equal(t, "math", progress.Subject)
	assert.Equal(t, 3, progress.QuestionsDone)
	assert.Greater(t, progress.SkillMasteries["algebra"], progress.SkillMasteries["geometry"])
	assert.Greater(t, progress.AverageMastery, 0.3)
}

func TestSessionEndpointsForeignUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	owner := env.registerUser(t, "ada@example.com", "ada")
	session := startSession(t, env, owner, "math")

	// A second authenticated user must get 403 on the owner's session.
	other := env.registerUser(t, "eve@example.com", "eve")

	paths := []string{
		fmt.Sprintf("/api/sessions/%s/next", session.SessionID),
		fmt.Sprintf("/api/sessions/%s/progress", session.SessionID),
		fmt.Sprintf("/api/sessions/%s/attempts", session.SessionID),
	}
	for _, path := range paths {
		resp := env.do(t, http.MethodGet, path, other, nil)
		assert.Equal(t, http.StatusForbidden, resp.Code, path)
	}

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/sessions/%s/answers", session.SessionID), other, map[string]string{
		"question_id": "a1",
		"answer":      "a",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// The owner is unaffected.
	resp = env.do(t, http.MethodGet, paths[1], owner, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}
