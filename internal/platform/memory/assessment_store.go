package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/store"
)

// AssessmentStore is an in-memory implementation of store.AssessmentStore.
type AssessmentStore struct {
	mu          sync.RWMutex
	assessments map[uuid.UUID]*domain.Assessment
}

// Ensure AssessmentStore implements store.AssessmentStore.
var _ store.AssessmentStore = (*AssessmentStore)(nil)

// NewAssessmentStore creates an empty in-memory assessment store.
func NewAssessmentStore() *AssessmentStore {
	return &AssessmentStore{assessments: make(map[uuid.UUID]*domain.Assessment)}
}

// Create implements store.AssessmentStore.Create.
func (s *AssessmentStore) Create(_ context.Context, assessment *domain.Assessment) error {
	if err := assessment.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.assessments[assessment.ID] = copyAssessment(assessment)
	return nil
}

// GetByID implements store.AssessmentStore.GetByID.
func (s *AssessmentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assessment, ok := s.assessments[id]
	if !ok {
		return nil, store.ErrAssessmentNotFound
	}
	return copyAssessment(assessment), nil
}

// Update implements store.AssessmentStore.Update.
func (s *AssessmentStore) Update(_ context.Context, assessment *domain.Assessment) error {
	if err := assessment.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assessments[assessment.ID]; !ok {
		return store.ErrAssessmentNotFound
	}
	s.assessments[assessment.ID] = copyAssessment(assessment)
	return nil
}

// ListByUser implements store.AssessmentStore.ListByUser.
func (s *AssessmentStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]*domain.Assessment, 0)
	for _, assessment := range s.assessments {
		if assessment.UserID != userID {
			continue
		}
		matching = append(matching, copyAssessment(assessment))
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})
	return matching, nil
}

// WithTx implements store.AssessmentStore.WithTx. Memory stores have no
// transactions; the same store is returned.
func (s *AssessmentStore) WithTx(_ *sql.Tx) store.AssessmentStore {
	return s
}

func copyAssessment(a *domain.Assessment) *domain.Assessment {
	c := *a
	c.QuestionIDs = append([]string(nil), a.QuestionIDs...)
	c.Answers = make(map[string]domain.AssessmentAnswer, len(a.Answers))
	for k, v := range a.Answers {
		c.Answers[k] = v
	}
	c.SkillMasteries = make(map[string]float64, len(a.SkillMasteries))
	for k, v := range a.SkillMasteries {
		c.SkillMasteries[k] = v
	}
	if a.CompletedAt != nil {
		completedAt := *a.CompletedAt
		c.CompletedAt = &completedAt
	}
	return &c
}
