package memory

import (
	"context"
	"testing"

	"github.com/firetrack/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@example.com"}))
	err := repo.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
}

func TestUserRepo_ActivateIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()
	id := uuid.New()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: id, Email: "b@example.com"}))

	u, err := repo.Activate(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.Activated)

	u, err = repo.Activate(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.Activated)

	_, err = repo.Activate(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()
	id := uuid.New()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: id, Email: "c@example.com"}))

	u, err := repo.GetByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
