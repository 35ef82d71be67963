package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/brightpath/adapt-api/internal/config"
	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/generation"
)

// promptTemplateText asks for strict JSON so the response can be unmarshalled
// directly; ResponseMIMEType reinforces that on the API side.
const promptTemplateText = `You are generating practice questions for an adaptive learning platform.

Generate {{.Count}} multiple-choice questions for the subject "{{.Subject}}",
targeting the skill "{{.Skill}}" at "{{.Difficulty}}" difficulty.

Each question must have exactly 4 options, and correct_answer must match one
of the options exactly.

Respond with JSON only, in this shape:
{"questions": [{"text": "...", "options": ["...", "...", "...", "..."], "correct_answer": "..."}]}`

// Generator implements the generation.Generator interface using Google's
// Gemini API.
type Generator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// Ensure Generator implements generation.Generator.
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator from the LLM configuration. It validates
// the configuration and initializes the Gemini client.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("question").Parse(promptTemplateText)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:         logger.With(slog.String("component", "gemini_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateQuestions implements generation.Generator.
func (g *Generator) GenerateQuestions(ctx context.Context, req generation.Request) ([]*domain.Question, error) {
	if req.Subject == "" || req.Skill == "" {
		return nil, fmt.Errorf("%w: subject and skill are required", generation.ErrGenerationFailed)
	}
	if !req.Difficulty.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDifficulty, req.Difficulty)
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	prompt, err := g.createPrompt(req)
	if err != nil {
		return nil, err
	}

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.toQuestions(req, response)
}

// createPrompt renders the prompt template for the request.
func (g *Generator) createPrompt(req generation.Request) (string, error) {
	var buf bytes.Buffer
	data := promptData{
		Subject:    req.Subject,
		Skill:      req.Skill,
		Difficulty: req.Difficulty,
		Count:      req.Count,
	}
	if err := g.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callWithRetry calls the Gemini API with exponential backoff and jitter.
// Permanent errors (blocked content, malformed responses) are returned
// immediately; transient API failures are retried up to MaxRetries times.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		g.logger.InfoContext(ctx, "calling Gemini API",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1))

		response, err := g.callOnce(ctx, prompt)
		if err == nil {
			return response, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}
		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce makes a single API call and parses the JSON payload.
func (g *Generator) callOnce(ctx context.Context, prompt string) (*responseSchema, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text.String()), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("%w: response contained no questions", generation.ErrInvalidResponse)
	}

	return &parsed, nil
}

// toQuestions validates the parsed payload and converts it to domain
// questions with freshly minted IDs.
func (g *Generator) toQuestions(req generation.Request, response *responseSchema) ([]*domain.Question, error) {
	questions := make([]*domain.Question, 0, len(response.Questions))
	for i, qs := range response.Questions {
		id := fmt.Sprintf("%s_%s_gen_%d_%d", req.Subject, req.Skill, time.Now().Unix(), i)

		question, err := domain.NewQuestion(
			id, qs.Text, qs.Options, qs.CorrectAnswer, req.Skill, req.Difficulty, req.Subject)
		if err != nil {
			return nil, fmt.Errorf("%w: generated question %d is invalid: %v",
				generation.ErrInvalidResponse, i, err)
		}
		questions = append(questions, question)
	}
	return questions, nil
}
