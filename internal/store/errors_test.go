package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightpath/adapt-api/internal/store"
)

func TestSentinelErrorWrapping(t *testing.T) {
	t.Parallel()

	// Entity-specific errors unwrap to their generic counterparts so
	// callers can match either level.
	assert.ErrorIs(t, store.ErrUserNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrQuestionNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrSessionNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrAssessmentNotFound, store.ErrNotFound)
	assert.ErrorIs(t, store.ErrEmailExists, store.ErrDuplicate)
	assert.ErrorIs(t, store.ErrUsernameExists, store.ErrDuplicate)
	assert.ErrorIs(t, store.ErrQuestionExists, store.ErrDuplicate)

	// Wrapping preserves the chain.
	wrapped := fmt.Errorf("loading profile: %w", store.ErrUserNotFound)
	assert.True(t, store.IsNotFoundError(wrapped))
	assert.False(t, store.IsDuplicateError(wrapped))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	base := errors.New("connection reset")
	err := store.NewStoreError("user", "create", "insert failed", base)

	assert.Equal(t, "create operation on user failed: insert failed: connection reset", err.Error())
	assert.ErrorIs(t, err, base)

	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "user", storeErr.Entity)

	bare := store.NewStoreError("question", "list", "bad filter", nil)
	assert.Equal(t, "list operation on question failed: bad filter", bare.Error())
}
