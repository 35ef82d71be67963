package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/store"
)

// QuestionStore is an in-memory implementation of store.QuestionStore.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[string]*domain.Question
	order     []string // insertion order, keeps List output stable
}

// Ensure QuestionStore implements store.QuestionStore.
var _ store.QuestionStore = (*QuestionStore)(nil)

// NewQuestionStore creates an empty in-memory question store.
func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[string]*domain.Question)}
}

// Create implements store.QuestionStore.Create.
func (s *QuestionStore) Create(_ context.Context, question *domain.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[question.ID]; ok {
		return store.ErrQuestionExists
	}

	s.questions[question.ID] = copyQuestion(question)
	s.order = append(s.order, question.ID)
	return nil
}

// CreateBatch implements store.QuestionStore.CreateBatch. Existing IDs are
// skipped so repeated seeding is idempotent.
func (s *QuestionStore) CreateBatch(_ context.Context, questions []*domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range questions {
		if _, ok := s.questions[q.ID]; ok {
			continue
		}
		s.questions[q.ID] = copyQuestion(q)
		s.order = append(s.order, q.ID)
	}
	return nil
}

// GetByID implements store.QuestionStore.GetByID.
func (s *QuestionStore) GetByID(_ context.Context, id string) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	question, ok := s.questions[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	return copyQuestion(question), nil
}

// List implements store.QuestionStore.List.
func (s *QuestionStore) List(_ context.Context, filter store.QuestionFilter) ([]*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]*domain.Question, 0, len(s.order))
	for _, id := range s.order {
		q := s.questions[id]
		if filter.Subject != "" && q.Subject != filter.Subject {
			continue
		}
		if filter.Skill != "" && q.Skill != filter.Skill {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		matching = append(matching, copyQuestion(q))
	}
	return matching, nil
}

// Subjects implements store.QuestionStore.Subjects.
func (s *QuestionStore) Subjects(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	subjects := make([]string, 0)
	for _, q := range s.questions {
		if _, ok := seen[q.Subject]; ok {
			continue
		}
		seen[q.Subject] = struct{}{}
		subjects = append(subjects, q.Subject)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Skills implements store.QuestionStore.Skills.
func (s *QuestionStore) Skills(_ context.Context, subject string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	skills := make([]string, 0)
	for _, q := range s.questions {
		if subject != "" && q.Subject != subject {
			continue
		}
		if _, ok := seen[q.Skill]; ok {
			continue
		}
		seen[q.Skill] = struct{}{}
		skills = append(skills, q.Skill)
	}
	sort.Strings(skills)
	return skills, nil
}

// Count implements store.QuestionStore.Count.
func (s *QuestionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}

// WithTx implements store.QuestionStore.WithTx. Memory stores have no
// transactions; the same store is returned.
func (s *QuestionStore) WithTx(_ *sql.Tx) store.QuestionStore {
	return s
}

func copyQuestion(q *domain.Question) *domain.Question {
	c := *q
	c.Options = append([]string(nil), q.Options...)
	return &c
}
