package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/internal/directory/store"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/idx"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

const (
	// ConfirmDeletionPhrase must be sent verbatim to complete an account
	// deletion.
	ConfirmDeletionPhrase = "delete my account"

	// DefaultDeletionTokenTTL bounds how long a deletion request stays
	// confirmable.
	DefaultDeletionTokenTTL = 5 * time.Minute
)

var (
	ErrUsernameTaken        = errors.New("username_taken")
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrInvalidRefresh       = errors.New("invalid_refresh_token")
	ErrSamePassword         = errors.New("same_password")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrRoleNotFound         = errors.New("role_not_found")
	ErrInvalidDeletionToken = errors.New("invalid_deletion_token")
	ErrConfirmationMismatch = errors.New("confirmation_mismatch")
)

// AuthService orchestrates registration, login, token rotation, password
// change, and the two-step account deletion flow.
type AuthService struct {
	Store    store.Store
	Tokens   *jwtx.Issuer
	Sessions SessionBinder

	// DeletionTokenTTL defaults to DefaultDeletionTokenTTL when zero.
	DeletionTokenTTL time.Duration

	// DefaultRole is assigned to new users when no explicit roles are
	// requested. Empty means no role assignment.
	DefaultRole string
}

// CanonicalUsername lowercases and trims a username. All writes and lookups
// go through this so "Alice" and "alice" are the same account.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register creates a new user, assigns the requested (or default) roles, and
// returns a freshly issued and bound token pair.
func (s *AuthService) Register(ctx context.Context, username, password string, roleIDs []int64) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	username = CanonicalUsername(username)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	var (
		user domain.User
		pair domain.TokenPair
	)

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByUsername(ctx, username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		id, err := tx.Users().CreateUser(ctx, domain.User{
			Username:     username,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			// The pre-check does not make the insert atomic; a
			// concurrent registration can still trip the unique
			// index.
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return err
		}

		if len(roleIDs) == 0 && s.DefaultRole != "" {
			role, err := tx.Roles().GetRoleByName(ctx, s.DefaultRole)
			if err != nil {
				return err
			}
			roleIDs = []int64{role.ID}
		}
		for _, roleID := range roleIDs {
			if _, err := tx.Roles().GetRoleByID(ctx, roleID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrRoleNotFound
				}
				return err
			}
			if err := tx.Users().AssignRole(ctx, id, roleID); err != nil {
				return err
			}
		}

		pair, err = s.issueAndBind(ctx, tx.Users(), id, username)
		if err != nil {
			return err
		}

		user, err = tx.Users().GetUserByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	return user, pair, nil
}

// Login verifies credentials and issues a new token pair, rebinding the
// refresh token and so invalidating any prior session. Unknown-user and
// wrong-password failures take the same path: both burn one hash comparison
// and return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	username = CanonicalUsername(username)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.VerifyDummy(password)
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		l.Info("login failed", slog.String("username", username))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueAndBind(ctx, s.Store.Users(), user.ID, user.Username)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", slog.Int64("user_id", user.ID))
	return pair, nil
}

// GetProfile returns the user and its roles. Password and session state are
// stripped at the transport layer.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (domain.User, []domain.Role, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, nil, ErrUserNotFound
		}
		return domain.User{}, nil, err
	}

	roles, err := s.Store.Users().GetUserRoles(ctx, userID)
	if err != nil {
		return domain.User{}, nil, err
	}
	return user, roles, nil
}

// Refresh rotates a refresh token: the presented token must carry a valid
// signature AND match the user's current binding. Each refresh token is
// usable exactly once; the new pair replaces the old binding atomically.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	userID, err := claims.UserID()
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		if !s.Sessions.Matches(user, refreshToken) {
			l.Warn("refresh token reuse or rotation mismatch", slog.Int64("user_id", userID))
			return ErrInvalidRefresh
		}

		pair, err = s.issueAndBind(ctx, tx.Users(), user.ID, user.Username)
		return err
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Debug("refresh token rotated", slog.Int64("user_id", userID))
	return pair, nil
}

// ChangePassword verifies the current password, stores the new hash, and
// issues a fresh pair. Outstanding refresh tokens are invalidated by the
// rebinding.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUserNotFound
		}
		return domain.TokenPair{}, err
	}

	if !cryptox.VerifyPassword(currentPassword, user.PasswordHash) {
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	if newPassword == currentPassword {
		return domain.TokenPair{}, ErrSamePassword
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return domain.TokenPair{}, err
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return err
		}
		pair, err = s.issueAndBind(ctx, tx.Users(), user.ID, user.Username)
		return err
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("password changed", slog.Int64("user_id", userID))
	return pair, nil
}

// RequestDeletion starts the two-step account deletion flow. The caller must
// re-prove the password; on success a short-lived single-use deletion token
// is returned. Only its fingerprint is persisted.
func (s *AuthService) RequestDeletion(ctx context.Context, userID int64, password string) (token string, expiresAt time.Time, err error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", time.Time{}, ErrUserNotFound
		}
		return "", time.Time{}, err
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	raw, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt = now.Add(s.deletionTTL())

	err = s.Store.DeletionTokens().CreateDeletionToken(ctx, domain.DeletionToken{
		ID:        idx.New(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		return "", time.Time{}, err
	}

	slogx.FromContext(ctx).Info("account deletion requested", slog.Int64("user_id", userID))
	return raw, expiresAt, nil
}

// ConfirmDeletion completes the flow: the deletion token must be the active
// one for the user and the confirmation phrase must match exactly. The token
// is consumed even though the user row (and its cascades) disappear with it.
func (s *AuthService) ConfirmDeletion(ctx context.Context, userID int64, deletionToken, confirmation string) error {
	if confirmation != ConfirmDeletionPhrase {
		return ErrConfirmationMismatch
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		pending, err := tx.DeletionTokens().GetActiveDeletionToken(ctx, userID, time.Now().UTC())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidDeletionToken
			}
			return err
		}

		if !cryptox.VerifyFingerprint(deletionToken, pending.TokenHash) {
			return ErrInvalidDeletionToken
		}

		if err := tx.DeletionTokens().MarkDeletionTokenUsed(ctx, pending.ID); err != nil {
			return err
		}

		if err := tx.Users().DeleteUser(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("account deleted", slog.Int64("user_id", userID))
	return nil
}

func (s *AuthService) deletionTTL() time.Duration {
	if s.DeletionTokenTTL != 0 {
		return s.DeletionTokenTTL
	}
	return DefaultDeletionTokenTTL
}

// issueAndBind mints a token pair and rebinds the refresh half as the user's
// single active session.
func (s *AuthService) issueAndBind(ctx context.Context, users store.Users, userID int64, username string) (domain.TokenPair, error) {
	jwtPair, err := s.Tokens.IssuePair(userID, username)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Sessions.Bind(ctx, users, userID, jwtPair.RefreshToken); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  jwtPair.AccessToken,
		RefreshToken: jwtPair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(jwtPair.ExpiresIn.Seconds()),
	}, nil
}
