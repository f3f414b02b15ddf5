package service

import (
	"context"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/internal/directory/store"
	"github.com/wardenauth/warden/pkg/cryptox"
)

// SessionBinder maintains the single active refresh token per user. Only a
// fingerprint of the token is persisted; presenting a rotated-out token fails
// the match and forces re-authentication.
type SessionBinder struct{}

// Bind stores the fingerprint of refreshToken as the user's sole valid
// refresh credential, overwriting any prior binding.
func (SessionBinder) Bind(ctx context.Context, users store.Users, userID int64, refreshToken string) error {
	fp := cryptox.FingerprintToken(refreshToken)
	return users.UpdateRefreshTokenHash(ctx, userID, &fp)
}

// Matches reports whether refreshToken is the user's currently bound token.
func (SessionBinder) Matches(user domain.User, refreshToken string) bool {
	if !user.HasSession() {
		return false
	}
	return cryptox.VerifyFingerprint(refreshToken, *user.RefreshTokenHash)
}

// Clear removes the user's refresh token binding. Called on rotation and on
// password change so outstanding refresh tokens stop working.
func (SessionBinder) Clear(ctx context.Context, users store.Users, userID int64) error {
	return users.UpdateRefreshTokenHash(ctx, userID, nil)
}
