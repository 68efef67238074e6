package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quill/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "ana", Email: "ana@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Username: "ana", Email: "other@example.com", Password: "hash"})
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		got, err = repo.GetByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		got, err = repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana", got.Username)
	})

	t.Run("missing", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "nobody")
		assert.NoError(t, err)
		assert.Nil(t, got)

		_, err = repo.GetByID(ctx, 999)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("list", func(t *testing.T) {
		users, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres other error", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("UNIQUE constraint failed: users.email"), true},
		{"gorm", gorm.ErrDuplicatedKey, true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueConstraintError(tt.err))
		})
	}
}
