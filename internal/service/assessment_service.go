package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/domain/bkt"
	"github.com/brightpath/adapt-api/internal/platform/logger"
	"github.com/brightpath/adapt-api/internal/store"
)

// DefaultAssessmentSize is the question count used when the caller does not
// configure one.
const DefaultAssessmentSize = 10

// AssessmentStep is what the learner sees while taking an assessment: the
// current question with the cursor position. Question is nil once the
// assessment is complete.
type AssessmentStep struct {
	AssessmentID uuid.UUID        `json:"assessment_id"`
	Question     *domain.Question `json:"question,omitempty"`
	Index        int              `json:"index"`
	Total        int              `json:"total"`
	Complete     bool             `json:"complete"`
}

// AssessmentResults is the final report for a completed assessment.
type AssessmentResults struct {
	AssessmentID    uuid.UUID              `json:"assessment_id"`
	Subject         string                 `json:"subject"`
	Analysis        bkt.AssessmentAnalysis `json:"analysis"`
	SkillMasteries  map[string]float64     `json:"skill_masteries"`
	Recommendations []bkt.Recommendation   `json:"recommendations"`
	CompletedAt     time.Time              `json:"completed_at"`
}

// AssessmentService runs fixed-length diagnostic assessments and produces
// the post-assessment analysis.
type AssessmentService interface {
	// Start creates a new assessment for the user over a balanced question
	// set drawn from the subject's pool.
	// Returns ErrNoQuestionsAvailable when the subject has no questions.
	Start(ctx context.Context, userID uuid.UUID, subject string) (*domain.Assessment, error)

	// CurrentQuestion returns the question the learner should answer next.
	// Returns ErrNotOwned when the assessment belongs to a different user.
	CurrentQuestion(ctx context.Context, userID, assessmentID uuid.UUID) (*AssessmentStep, error)

	// SubmitAnswer grades the answer for the current question, updates the
	// mastery estimate and advances the cursor.
	// Returns ErrNotOwned when the assessment belongs to a different user.
	SubmitAnswer(ctx context.Context, userID, assessmentID uuid.UUID, questionID, answer string) (*AssessmentStep, error)

	// Results builds the analysis report for a completed assessment.
	// Returns domain.ErrAssessmentNotComplete while it is still in progress
	// and ErrNotOwned when the assessment belongs to a different user.
	Results(ctx context.Context, userID, assessmentID uuid.UUID) (*AssessmentResults, error)

	// ListByUser returns the user's assessments, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error)
}

// assessmentServiceImpl implements the AssessmentService interface.
type assessmentServiceImpl struct {
	assessments store.AssessmentStore
	questions   store.QuestionStore
	engine      bkt.Service
	size        int
	logger      *slog.Logger
}

// NewAssessmentService creates a new AssessmentService.
// A non-positive size falls back to DefaultAssessmentSize.
func NewAssessmentService(
	assessments store.AssessmentStore,
	questions store.QuestionStore,
	engine bkt.Service,
	size int,
	log *slog.Logger,
) (AssessmentService, error) {
	if assessments == nil {
		return nil, fmt.Errorf("assessment store cannot be nil")
	}
	if questions == nil {
		return nil, fmt.Errorf("question store cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if size <= 0 {
		size = DefaultAssessmentSize
	}
	if log == nil {
		log = slog.Default()
	}

	return &assessmentServiceImpl{
		assessments: assessments,
		questions:   questions,
		engine:      engine,
		size:        size,
		logger:      log.With(slog.String("component", "assessment_service")),
	}, nil
}

// Start implements AssessmentService.Start.
func (s *assessmentServiceImpl) Start(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) (*domain.Assessment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pool, err := s.questions.List(ctx, store.QuestionFilter{Subject: subject})
	if err != nil {
		return nil, NewServiceError("assessment", "start", "question lookup failed", err)
	}

	selected := s.engine.SelectAssessmentQuestions(pool, s.size)
	if len(selected) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	questionIDs := make([]string, len(selected))
	masteries := make(map[string]float64)
	for i, q := range selected {
		questionIDs[i] = q.ID
		if _, ok := masteries[q.Skill]; !ok {
			masteries[q.Skill] = s.engine.InitializeSkill()
		}
	}

	assessment, err := domain.NewAssessment(userID, subject, questionIDs, masteries)
	if err != nil {
		return nil, err
	}

	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, NewServiceError("assessment", "start", "failed to save assessment", err)
	}

	log.Info("assessment started",
		slog.String("assessment_id", assessment.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("subject", subject),
		slog.Int("question_count", len(questionIDs)))
	return assessment, nil
}

// ownedAssessment loads the assessment and verifies it belongs to the caller.
func (s *assessmentServiceImpl) ownedAssessment(
	ctx context.Context,
	userID, assessmentID uuid.UUID,
) (*domain.Assessment, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.UserID != userID {
		s.logger.Warn("assessment access denied",
			slog.String("assessment_id", assessmentID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return assessment, nil
}

// CurrentQuestion implements AssessmentService.CurrentQuestion.
func (s *assessmentServiceImpl) CurrentQuestion(ctx context.Context, userID, assessmentID uuid.UUID) (*AssessmentStep, error) {
	assessment, err := s.ownedAssessment(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.step(ctx, assessment)
}

// SubmitAnswer implements AssessmentService.SubmitAnswer.
func (s *assessmentServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID, assessmentID uuid.UUID,
	questionID, answer string,
) (*AssessmentStep, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	assessment, err := s.ownedAssessment(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	isCorrect := question.CheckAnswer(answer)

	before, tracked := assessment.SkillMasteries[question.Skill]
	if !tracked {
		before = s.engine.InitializeSkill()
	}
	after := s.engine.UpdateMastery(before, isCorrect, question.Difficulty)

	updated, err := assessment.RecordAnswer(questionID, question.Skill, answer, isCorrect, after, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.assessments.Update(ctx, updated); err != nil {
		return nil, NewServiceError("assessment", "submit_answer", "failed to save assessment", err)
	}

	log.Info("assessment answer graded",
		slog.String("assessment_id", assessmentID.String()),
		slog.String("question_id", questionID),
		slog.Bool("correct", isCorrect),
		slog.Bool("complete", updated.IsComplete()))

	return s.step(ctx, updated)
}

// Results implements AssessmentService.Results.
func (s *assessmentServiceImpl) Results(ctx context.Context, userID, assessmentID uuid.UUID) (*AssessmentResults, error) {
	assessment, err := s.ownedAssessment(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if !assessment.IsComplete() {
		return nil, domain.ErrAssessmentNotComplete
	}

	records := make([]bkt.AnswerRecord, 0, len(assessment.QuestionIDs))
	questions := make(map[string]*domain.Question, len(assessment.QuestionIDs))
	for _, id := range assessment.QuestionIDs {
		answer, ok := assessment.Answers[id]
		if !ok {
			continue
		}
		records = append(records, bkt.AnswerRecord{QuestionID: id, IsCorrect: answer.IsCorrect})

		q, err := s.questions.GetByID(ctx, id)
		if err != nil {
			// A question deleted after the fact drops out of the difficulty
			// breakdown but still counts toward the score.
			continue
		}
		questions[id] = q
	}

	analysis := bkt.AnalyzeAssessment(assessment.SkillMasteries, records, questions)
	recommendations := bkt.GenerateRecommendations(assessment.SkillMasteries, assessment.Subject)

	completedAt := assessment.UpdatedAt
	if assessment.CompletedAt != nil {
		completedAt = *assessment.CompletedAt
	}

	return &AssessmentResults{
		AssessmentID:    assessment.ID,
		Subject:         assessment.Subject,
		Analysis:        analysis,
		SkillMasteries:  assessment.SkillMasteries,
		Recommendations: recommendations,
		CompletedAt:     completedAt,
	}, nil
}

// ListByUser implements AssessmentService.ListByUser.
func (s *assessmentServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error) {
	return s.assessments.ListByUser(ctx, userID)
}

// step builds the learner-facing view of the assessment cursor.
func (s *assessmentServiceImpl) step(ctx context.Context, assessment *domain.Assessment) (*AssessmentStep, error) {
	step := &AssessmentStep{
		AssessmentID: assessment.ID,
		Index:        assessment.CurrentIndex,
		Total:        len(assessment.QuestionIDs),
		Complete:     assessment.IsComplete(),
	}

	if id, ok := assessment.CurrentQuestionID(); ok {
		question, err := s.questions.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		step.Question = question
	}

	return step, nil
}
