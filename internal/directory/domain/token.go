package domain

import (
	"time"

	"github.com/wardenauth/warden/pkg/idx"
)

// TokenPair is the result of a successful authentication or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// DeletionToken is a pending account deletion request. The raw token is
// returned to the caller once at issue time; only its fingerprint is stored.
type DeletionToken struct {
	ID        idx.ID
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Expired reports whether the deletion token is past its expiry at now.
func (d *DeletionToken) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
