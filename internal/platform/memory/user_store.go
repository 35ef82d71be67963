package memory

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/store"
)

// UserStore is an in-memory implementation of store.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

// Ensure UserStore implements store.UserStore.
var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*domain.User)}
}

// Create implements store.UserStore.Create.
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrEmailExists
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return store.ErrUsernameExists
		}
	}

	s.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(user), nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return copyUser(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByUsername implements store.UserStore.GetByUsername.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			return copyUser(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements store.UserStore.Update.
func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}

	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrEmailExists
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return store.ErrUsernameExists
		}
	}

	s.users[user.ID] = copyUser(user)
	return nil
}

// Delete implements store.UserStore.Delete.
func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// WithTx implements store.UserStore.WithTx. Memory stores have no
// transactions; the same store is returned.
func (s *UserStore) WithTx(_ *sql.Tx) store.UserStore {
	return s
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Password = ""
	return &c
}
