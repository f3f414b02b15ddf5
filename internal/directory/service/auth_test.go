package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/internal/directory/store"
	"github.com/wardenauth/warden/internal/directory/store/drivers/sqlite"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	return &AuthService{
		Store: newTestStore(t),
		Tokens: &jwtx.Issuer{
			Issuer:        "warden-test",
			AccessSecret:  []byte("test-access-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		},
		DefaultRole: domain.RoleMember,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	t.Run("creates user and returns bound pair", func(t *testing.T) {
		user, pair, err := svc.Register(ctx, "Alice", "P@ssw0rd1", nil)
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)
		require.NotZero(t, user.ID)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)

		stored, err := svc.Store.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, stored.HasSession())
		require.NotEqual(t, "P@ssw0rd1", stored.PasswordHash)
	})

	t.Run("assigns the default role", func(t *testing.T) {
		user, _, err := svc.Register(ctx, "bob", "Secret123", nil)
		require.NoError(t, err)

		roles, err := svc.Store.Users().GetUserRoles(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		require.Equal(t, domain.RoleMember, roles[0].Name)
	})

	t.Run("rejects case-insensitive duplicate", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "ALICE", "Other1234", nil)
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("rejects unknown role id", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "carol", "Secret123", []int64{9999})
		require.ErrorIs(t, err, ErrRoleNotFound)

		// The transaction rolled back, so the username stays free.
		_, err = svc.Store.Users().GetUserByUsername(ctx, "carol")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("honors explicit role ids", func(t *testing.T) {
		admin, err := svc.Store.Roles().GetRoleByName(ctx, domain.RoleAdmin)
		require.NoError(t, err)

		user, _, err := svc.Register(ctx, "dave", "Secret123", []int64{admin.ID})
		require.NoError(t, err)

		roles, err := svc.Store.Users().GetUserRoles(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		require.Equal(t, domain.RoleAdmin, roles[0].Name)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	_, registered, err := svc.Register(ctx, "Alice", "P@ssw0rd1", nil)
	require.NoError(t, err)

	t.Run("mixed-case username succeeds", func(t *testing.T) {
		pair, err := svc.Login(ctx, "ALICE", "P@ssw0rd1")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user fails the same way", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login rebinds, invalidating prior refresh token", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "P@ssw0rd1")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, registered.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	_, pair, err := svc.Register(ctx, "alice", "P@ssw0rd1", nil)
	require.NoError(t, err)

	t.Run("each refresh token works exactly once", func(t *testing.T) {
		rotated, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		// The rotated token is the live one.
		_, err = svc.Refresh(ctx, rotated.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("garbage token fails", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	user, pair, err := svc.Register(ctx, "alice", "P@ssw0rd1", nil)
	require.NoError(t, err)

	t.Run("wrong current password fails", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, user.ID, "wrong", "NewSecret1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("same password rejected", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, user.ID, "P@ssw0rd1", "P@ssw0rd1")
		require.ErrorIs(t, err, ErrSamePassword)
	})

	t.Run("success invalidates prior refresh token", func(t *testing.T) {
		fresh, err := svc.ChangePassword(ctx, user.ID, "P@ssw0rd1", "NewSecret1")
		require.NoError(t, err)
		require.NotEmpty(t, fresh.RefreshToken)

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		_, err = svc.Login(ctx, "alice", "P@ssw0rd1")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "alice", "NewSecret1")
		require.NoError(t, err)
	})
}

func TestAccountDeletion(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)
	svc.DeletionTokenTTL = 5 * time.Minute

	user, _, err := svc.Register(ctx, "alice", "P@ssw0rd1", nil)
	require.NoError(t, err)

	t.Run("request requires the password", func(t *testing.T) {
		_, _, err := svc.RequestDeletion(ctx, user.ID, "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("confirmation phrase must match exactly", func(t *testing.T) {
		token, _, err := svc.RequestDeletion(ctx, user.ID, "P@ssw0rd1")
		require.NoError(t, err)

		err = svc.ConfirmDeletion(ctx, user.ID, token, "delete MY account")
		require.ErrorIs(t, err, ErrConfirmationMismatch)
	})

	t.Run("a new request supersedes the previous token", func(t *testing.T) {
		first, _, err := svc.RequestDeletion(ctx, user.ID, "P@ssw0rd1")
		require.NoError(t, err)

		_, _, err = svc.RequestDeletion(ctx, user.ID, "P@ssw0rd1")
		require.NoError(t, err)

		err = svc.ConfirmDeletion(ctx, user.ID, first, ConfirmDeletionPhrase)
		require.ErrorIs(t, err, ErrInvalidDeletionToken)
	})

	t.Run("wrong token fails", func(t *testing.T) {
		_, _, err := svc.RequestDeletion(ctx, user.ID, "P@ssw0rd1")
		require.NoError(t, err)

		err = svc.ConfirmDeletion(ctx, user.ID, "bogus-token", ConfirmDeletionPhrase)
		require.ErrorIs(t, err, ErrInvalidDeletionToken)
	})

	t.Run("valid token deletes the account", func(t *testing.T) {
		token, expiresAt, err := svc.RequestDeletion(ctx, user.ID, "P@ssw0rd1")
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 10*time.Second)

		require.NoError(t, svc.ConfirmDeletion(ctx, user.ID, token, ConfirmDeletionPhrase))

		_, _, err = svc.GetProfile(ctx, user.ID)
		require.ErrorIs(t, err, ErrUserNotFound)

		err = svc.ConfirmDeletion(ctx, user.ID, token, ConfirmDeletionPhrase)
		require.ErrorIs(t, err, ErrInvalidDeletionToken)
	})
}

func TestDeletionTokenExpiry(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)
	svc.DeletionTokenTTL = -time.Second // already expired when issued

	user, _, err := svc.Register(ctx, "alice", "P@ssw0rd1", nil)
	require.NoError(t, err)

	token, _, err := svc.RequestDeletion(ctx, user.ID, "P@ssw0rd1")
	require.NoError(t, err)

	err = svc.ConfirmDeletion(ctx, user.ID, token, ConfirmDeletionPhrase)
	require.ErrorIs(t, err, ErrInvalidDeletionToken)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	user, _, err := svc.Register(ctx, "alice", "P@ssw0rd1", nil)
	require.NoError(t, err)

	got, roles, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Len(t, roles, 1)

	_, _, err = svc.GetProfile(ctx, 9999)
	require.ErrorIs(t, err, ErrUserNotFound)
}
