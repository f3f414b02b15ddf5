package service

import (
	"context"
	"testing"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthService(t)
	authz := &AuthorizeService{Store: auth.Store}

	member, _, err := auth.Register(ctx, "member", "Secret123", nil)
	require.NoError(t, err)

	adminRole, err := auth.Store.Roles().GetRoleByName(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	admin, _, err := auth.Register(ctx, "admin", "Secret123", []int64{adminRole.ID})
	require.NoError(t, err)

	t.Run("empty required set always passes", func(t *testing.T) {
		ok, err := authz.Authorize(ctx, member.ID, nil)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("member holds read permissions only", func(t *testing.T) {
		ok, err := authz.Authorize(ctx, member.ID, []string{domain.PermUserRead})
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = authz.Authorize(ctx, member.ID, []string{domain.PermRoleWrite})
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("any-of semantics", func(t *testing.T) {
		ok, err := authz.Authorize(ctx, member.ID, []string{domain.PermRoleWrite, domain.PermUserRead})
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("admin holds all seeded permissions", func(t *testing.T) {
		for _, perm := range []string{domain.PermUserRead, domain.PermUserWrite, domain.PermRoleRead, domain.PermRoleWrite} {
			ok, err := authz.Authorize(ctx, admin.ID, []string{perm})
			require.NoError(t, err)
			require.True(t, ok, "admin should hold %s", perm)
		}
	})

	t.Run("unknown user is denied, not an error", func(t *testing.T) {
		ok, err := authz.Authorize(ctx, 9999, []string{domain.PermUserRead})
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("resolve lists distinct permissions", func(t *testing.T) {
		perms, err := authz.ResolveUserPermissions(ctx, admin.ID)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{
			domain.PermUserRead, domain.PermUserWrite,
			domain.PermRoleRead, domain.PermRoleWrite,
		}, perms)
	})

	t.Run("deleting the user drops its grants", func(t *testing.T) {
		user, _, err := auth.Register(ctx, "shortlived", "Secret123", []int64{adminRole.ID})
		require.NoError(t, err)

		require.NoError(t, auth.Store.Users().DeleteUser(ctx, user.ID))

		ok, err := authz.Authorize(ctx, user.ID, []string{domain.PermRoleWrite})
		require.NoError(t, err)
		require.False(t, ok)
	})
}
