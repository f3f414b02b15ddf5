package domain

import "time"

// User is a directory account. Usernames are stored canonicalized to
// lowercase; the original casing is not preserved.
type User struct {
	ID           int64
	Username     string
	PasswordHash string

	// RefreshTokenHash is the fingerprint of the currently bound refresh
	// token, nil when no session is active.
	RefreshTokenHash *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSession reports whether the user has an active refresh token binding.
func (u *User) HasSession() bool {
	return u.RefreshTokenHash != nil && *u.RefreshTokenHash != ""
}
