package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/store"
)

// AttemptStore is an in-memory implementation of store.AttemptStore.
// Attempts are kept in insertion order, which matches creation time.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []*domain.Attempt
}

// Ensure AttemptStore implements store.AttemptStore.
var _ store.AttemptStore = (*AttemptStore)(nil)

// NewAttemptStore creates an empty in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

// Create implements store.AttemptStore.Create.
func (s *AttemptStore) Create(_ context.Context, attempt *domain.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *attempt
	s.attempts = append(s.attempts, &stored)
	return nil
}

// ListByUser implements store.AttemptStore.ListByUser.
func (s *AttemptStore) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]*domain.Attempt, 0)
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if s.attempts[i].UserID != userID {
			continue
		}
		stored := *s.attempts[i]
		matching = append(matching, &stored)
		if limit > 0 && len(matching) >= limit {
			break
		}
	}
	return matching, nil
}

// ListBySession implements store.AttemptStore.ListBySession.
func (s *AttemptStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]*domain.Attempt, 0)
	for _, attempt := range s.attempts {
		if attempt.SessionID != sessionID {
			continue
		}
		stored := *attempt
		matching = append(matching, &stored)
	}
	return matching, nil
}

// WithTx implements store.AttemptStore.WithTx. Memory stores have no
// transactions; the same store is returned.
func (s *AttemptStore) WithTx(_ *sql.Tx) store.AttemptStore {
	return s
}
