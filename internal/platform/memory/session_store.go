package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/store"
)

// SessionStore is an in-memory implementation of store.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.LearningSession
}

// Ensure SessionStore implements store.SessionStore.
var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*domain.LearningSession)}
}

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(_ context.Context, session *domain.LearningSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = copySession(session)
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *SessionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.LearningSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return copySession(session), nil
}

// FindByUserAndSubject implements store.SessionStore.FindByUserAndSubject.
func (s *SessionStore) FindByUserAndSubject(
	_ context.Context,
	userID uuid.UUID,
	subject string,
) (*domain.LearningSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.LearningSession
	for _, session := range s.sessions {
		if session.UserID != userID || session.Subject != subject {
			continue
		}
		if latest == nil || session.UpdatedAt.After(latest.UpdatedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, store.ErrSessionNotFound
	}
	return copySession(latest), nil
}

// Update implements store.SessionStore.Update.
func (s *SessionStore) Update(_ context.Context, session *domain.LearningSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return store.ErrSessionNotFound
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

// WithTx implements store.SessionStore.WithTx. Memory stores have no
// transactions; the same store is returned.
func (s *SessionStore) WithTx(_ *sql.Tx) store.SessionStore {
	return s
}

func copySession(session *domain.LearningSession) *domain.LearningSession {
	c := *session
	c.SkillMasteries = make(map[string]float64, len(session.SkillMasteries))
	for k, v := range session.SkillMasteries {
		c.SkillMasteries[k] = v
	}
	c.AnsweredIDs = append([]string(nil), session.AnsweredIDs...)
	return &c
}
