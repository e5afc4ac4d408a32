package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meraroom/meraroom-server/internal/domain"
	"github.com/meraroom/meraroom-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "users.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func makeTestUser(id, username string) *domain.User {
	return &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$fake$fake",
		DisplayName:  "Test User",
		CreatedAt:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOpen_WALMode(t *testing.T) {
	s := newTestStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser("user-1", "Asha")
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Username)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.Equal(t, "Test User", got.DisplayName)
	assert.True(t, got.CreatedAt.Equal(user.CreatedAt))
	assert.True(t, got.LastLoginAt.IsZero())

	byName, err := s.GetUserByUsername(ctx, "  asha ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byName.ID)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, makeTestUser("user-1", "asha")))
	err := s.CreateUser(ctx, makeTestUser("user-2", "ASHA"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetUserByUsername(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateLastLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, makeTestUser("user-1", "asha")))

	at := time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)
	require.NoError(t, s.UpdateLastLogin(ctx, "user-1", at))

	got, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, got.LastLoginAt.Equal(at))

	assert.ErrorIs(t, s.UpdateLastLogin(ctx, "missing", at), store.ErrNotFound)
}
