package bkt

import (
	"github.com/brightpath/adapt-api/internal/domain"
)

// Service defines the knowledge tracing operations exposed to the rest of
// the application. Implementations are stateless apart from fixed model
// parameters and safe for concurrent use.
type Service interface {
	// InitializeSkill returns the prior mastery for an unseen skill.
	InitializeSkill() float64

	// UpdateMastery computes the new mastery estimate after one answer.
	UpdateMastery(currentMastery float64, isCorrect bool, difficulty domain.Difficulty) float64

	// SelectNextQuestion picks the next question to serve from the pool.
	SelectNextQuestion(
		masteries map[string]float64,
		pool []*domain.Question,
		opts ...SelectOption,
	) Decision

	// SelectAssessmentQuestions builds a balanced fixed-size assessment set.
	SelectAssessmentQuestions(pool []*domain.Question, count int) []*domain.Question
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	tracker  *Tracker
	selector *Selector
}

// NewDefaultService creates a Service with default model parameters.
func NewDefaultService() Service {
	return &defaultService{
		tracker:  NewTracker(NewDefaultParams()),
		selector: NewSelector(),
	}
}

// NewServiceWithParams creates a Service with custom model parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		tracker:  NewTracker(params),
		selector: NewSelector(),
	}
}

func (s *defaultService) InitializeSkill() float64 {
	return s.tracker.InitializeSkill()
}

func (s *defaultService) UpdateMastery(
	currentMastery float64,
	isCorrect bool,
	difficulty domain.Difficulty,
) float64 {
	return s.tracker.UpdateMastery(currentMastery, isCorrect, difficulty)
}

func (s *defaultService) SelectNextQuestion(
	masteries map[string]float64,
	pool []*domain.Question,
	opts ...SelectOption,
) Decision {
	return s.selector.SelectNextQuestion(masteries, pool, opts...)
}

func (s *defaultService) SelectAssessmentQuestions(
	pool []*domain.Question,
	count int,
) []*domain.Question {
	return s.selector.SelectAssessmentQuestions(pool, count)
}
