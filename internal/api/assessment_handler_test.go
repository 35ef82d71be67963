package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAssessment(t *testing.T, env *testEnv, token, subject string) AssessmentStepResponse {
	t.Helper()

	resp := env.do(t, http.MethodPost, "/api/assessments", token, map[string]string{"subject": subject})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var step AssessmentStepResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &step))
	return step
}

// answerAssessment drives the assessment to completion by answering every
// question with the given answer, returning the final step.
func answerAssessment(t *testing.T, env *testEnv, token string, step AssessmentStepResponse, answer string) AssessmentStepResponse {
	t.Helper()

	path := fmt.Sprintf("/api/assessments/%s/answers", step.AssessmentID)
	for !step.Complete {
		require.NotNil(t, step.Question)

		resp := env.do(t, http.MethodPost, path, token, map[string]string{
			"question_id": step.Question.ID,
			"answer":      answer,
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		// Decode into a zeroed struct: the final step omits "question",
		// which would otherwise leave the previous question in place.
		step = AssessmentStepResponse{}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &step))
	}
	return step
}

func TestStartAssessmentEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	step := startAssessment(t, env, token, "math")
	assert.Equal(t, 4, step.Total)
	assert.Zero(t, step.Index)
	assert.False(t, step.Complete)
	require.NotNil(t, step.Question)
	assert.Equal(t, "math", step.Question.Subject)
}

func TestStartAssessmentEndpointUnknownSubject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	resp := env.do(t, http.MethodPost, "/api/assessments", token, map[string]string{"subject": "philately"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAssessmentFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	step := startAssessment(t, env, token, "math")
	final := answerAssessment(t, env, token, step, "a")

	assert.True(t, final.Complete)
	assert.Equal(t, final.Total, final.Index)
	assert.Nil(t, final.Question)

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/assessments/%s/results", step.AssessmentID), token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var results struct {
		AssessmentID uuid.UUID `json:"assessment_id"`
		Subject      string    `json:"subject"`
		Analysis struct {
			Score struct {
				Correct    int     `json:"correct"`
				Total      int     `json:"total"`
				Percentage float64 `json:"percentage"`
			} `json:"score"`
			OverallMastery float64 `json:"overall_mastery"`
		} `json:"analysis"`
		SkillMasteries  map[string]float64 `json:"skill_masteries"`
		Recommendations []json.RawMessage  `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
	assert.Equal(t, step.AssessmentID, results.AssessmentID)
	assert.Equal(t, "math", results.Subject)
	assert.Equal(t, 4, results.Analysis.Score.Total)
	assert.Equal(t, 4, results.Analysis.Score.Correct)
	assert.InDelta(t, 100.0, results.Analysis.Score.Percentage, 1e-9)
	assert.Greater(t, results.Analysis.OverallMastery, 0.3)
	assert.NotEmpty(t, results.SkillMasteries)
	assert.NotEmpty(t, results.Recommendations)
}

func TestAssessmentEndpointErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	step := startAssessment(t, env, token, "math")
	answersPath := fmt.Sprintf("/api/assessments/%s/answers", step.AssessmentID)

	t.Run("results before completion", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/assessments/%s/results", step.AssessmentID), token, nil)
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("answer out of order", func(t *testing.T) {
		// A pooled question that is not part of this assessment: the
		// deterministic sampler takes the first and third question per
		// skill, so the easy ones are never drawn.
		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": "a2",
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

	t.Run("answer after completion", func(t *testing.T) {
		answerAssessment(t, env, token, step, "b")

		resp := env.do(t, http.MethodPost, answersPath, token, map[string]string{
			"question_id": "a1",
			"answer":      "a",
		})
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("unknown assessment", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/assessments/%s/question", uuid.New()), token, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestListAssessmentsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	token := env.registerUser(t, "ada@example.com", "ada")

	t.Run("empty", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/assessments", token, nil)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	first := startAssessment(t, env, token, "math")
	answerAssessment(t, env, token, first, "a")
	second := startAssessment(t, env, token, "math")

	resp := env.do(t, http.MethodGet, "/api/assessments", token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var listed []struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, second.AssessmentID, listed[0].ID, "newest first")
	assert.Equal(t, first.AssessmentID, listed[1].ID)
}

func TestAssessmentEndpointsForeignUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedPool(t)
	owner := env.registerUser(t, "ada@example.com", "ada")
	step := startAssessment(t, env, owner, "math")

	// A second authenticated user must get 403 on the owner's assessment.
	other := env.registerUser(t, "eve@example.com", "eve")

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/assessments/%s/question", step.AssessmentID), other, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/assessments/%s/answers", step.AssessmentID), other, map[string]string{
		"question_id": step.Question.ID,
		"answer":      "a",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/assessments/%s/results", step.AssessmentID), other, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// The owner is unaffected.
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/assessments/%s/question", step.AssessmentID), owner, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}
