package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/platform/logger"
	"github.com/brightpath/adapt-api/internal/service/auth"
	"github.com/brightpath/adapt-api/internal/store"
)

// UserService provides registration, authentication and profile operations.
type UserService interface {
	// Register creates a new user account. The plaintext password is hashed
	// before storage and never persisted.
	// Returns store.ErrEmailExists or store.ErrUsernameExists on conflicts.
	Register(ctx context.Context, email, username, password, name string) (*domain.User, error)

	// Authenticate verifies the login (email or username) and password.
	// Returns auth.ErrInvalidCredentials when either is wrong, without
	// revealing which.
	Authenticate(ctx context.Context, login, password string) (*domain.User, error)

	// GetProfile retrieves a user by ID.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// TouchActivity records that the user was just active.
	TouchActivity(ctx context.Context, userID uuid.UUID) error
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, fmt.Errorf("user store cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher cannot be nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("password verifier cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &userServiceImpl{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		logger:   log.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register.
func (s *userServiceImpl) Register(
	ctx context.Context,
	email, username, password, name string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, username, password, name)
	if err != nil {
		log.Warn("user registration rejected",
			slog.String("error", err.Error()))
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", "password hashing failed", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return user, nil
}

// Authenticate implements UserService.Authenticate.
func (s *userServiceImpl) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, login)
	if errors.Is(err, store.ErrUserNotFound) {
		user, err = s.users.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same error as a bad password, so login probing learns nothing.
			return nil, auth.ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "authenticate", "lookup failed", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password comparison failed",
			slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}

	user.Touch(time.Now())
	if err := s.users.Update(ctx, user); err != nil {
		// Login still succeeds if the activity stamp fails to persist.
		log.Warn("failed to record login activity",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
	}

	return user, nil
}

// GetProfile implements UserService.GetProfile.
func (s *userServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// TouchActivity implements UserService.TouchActivity.
func (s *userServiceImpl) TouchActivity(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Touch(time.Now())
	return s.users.Update(ctx, user)
}
