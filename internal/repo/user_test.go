package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	r := newTestRepos(t).Users
	ctx := context.Background()

	created, err := r.Create(ctx, domain.User{Email: "ana@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := r.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", byID.Email)
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	r := newTestRepos(t).Users
	ctx := context.Background()

	_, err := r.Create(ctx, domain.User{Email: "dup@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = r.Create(ctx, domain.User{Email: "dup@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	r := newTestRepos(t).Users

	_, err := r.GetByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
