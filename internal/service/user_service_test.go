package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/adapt-api/internal/platform/memory"
	"github.com/brightpath/adapt-api/internal/service/auth"
	"github.com/brightpath/adapt-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Bcrypt's minimum cost keeps the hashing in these tests fast.
func newTestUserService(t *testing.T) (UserService, *memory.UserStore) {
	t.Helper()
	users := memory.NewUserStore()
	svc, err := NewUserService(users, auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), testLogger())
	require.NoError(t, err)
	return svc, users
}

func TestNewUserServiceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewUserService(nil, auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), testLogger())
	assert.Error(t, err)

	_, err = NewUserService(memory.NewUserStore(), nil, auth.NewBcryptVerifier(), testLogger())
	assert.Error(t, err)

	_, err = NewUserService(memory.NewUserStore(), auth.NewBcryptHasher(4), nil, testLogger())
	assert.Error(t, err)
}

func TestUserServiceRegister(t *testing.T) {
	t.Parallel()
	svc, users := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ada@example.com", "ada", "correct horse battery", "Ada")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Empty(t, user.Password, "plaintext password must not survive registration")
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "correct horse battery", user.HashedPassword)

	stored, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestUserServiceRegisterDuplicates(t *testing.T) {
	t.Parallel()
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada@example.com", "ada", "correct horse battery", "Ada")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ada@example.com", "other", "correct horse battery", "")
	assert.ErrorIs(t, err, store.ErrEmailExists)

	_, err = svc.Register(ctx, "other@example.com", "ada", "correct horse battery", "")
	assert.ErrorIs(t, err, store.ErrUsernameExists)
}

func TestUserServiceRegisterInvalidInput(t *testing.T) {
	t.Parallel()
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "ada", "correct horse battery", "")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "ada@example.com", "ada", "short", "")
	assert.Error(t, err)
}

func TestUserServiceAuthenticate(t *testing.T) {
	t.Parallel()
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ada@example.com", "ada", "correct horse battery", "Ada")
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "ada@example.com", "correct horse battery")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("by username", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "ada", "correct horse battery")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ada@example.com", "wrong password here")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "correct horse battery")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestUserServiceGetProfile(t *testing.T) {
	t.Parallel()
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ada@example.com", "ada", "correct horse battery", "Ada")
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Username)

	_, err = svc.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
