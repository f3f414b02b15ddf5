package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/internal/directory/store"
	"github.com/wardenauth/warden/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, dsn string) *Store {
	t.Helper()

	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func createUser(t *testing.T, s *Store, username string) int64 {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()
	id, err := s.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return id
}

func TestDeleteUserCascadesOnEveryPoolConnection(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, filepath.Join(t.TempDir(), "test.db"))

	userID := createUser(t, s, "alice")

	role, err := s.Roles().GetRoleByName(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, s.Users().AssignRole(ctx, userID, role.ID))

	require.NoError(t, s.DeletionTokens().CreateDeletionToken(ctx, domain.DeletionToken{
		ID:        idx.New(),
		UserID:    userID,
		TokenHash: "fp",
		ExpiresAt: time.Now().UTC().Add(time.Minute),
		CreatedAt: time.Now().UTC(),
	}))

	// Drop the warmed-up connection so the delete below runs on a fresh
	// one from the pool. Foreign keys must be enforced there too, not
	// just on the connection that happened to serve the first query.
	s.db.SetMaxIdleConns(0)
	s.db.SetMaxIdleConns(2)

	require.NoError(t, s.Users().DeleteUser(ctx, userID))

	perms, err := s.Users().GetUserPermissions(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, perms)

	roles, err := s.Users().GetUserRoles(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, roles)

	_, err = s.DeletionTokens().GetActiveDeletionToken(ctx, userID, time.Now().UTC())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestServerDSNAppliesPragmas(t *testing.T) {
	// Same DSN shape the application uses; the mattn-style parameter
	// names are silently ignored by modernc.org/sqlite, so the pragma
	// form has to be used for these to take effect.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		filepath.Join(t.TempDir(), "test.db"))
	s := newStore(t, dsn)

	var journalMode string
	require.NoError(t, s.db.QueryRow(`PRAGMA journal_mode`).Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, s.db.QueryRow(`PRAGMA busy_timeout`).Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)

	var foreignKeys int
	require.NoError(t, s.db.QueryRow(`PRAGMA foreign_keys`).Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)
}
