package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/wardenauth/warden/internal/directory/store"
	"github.com/wardenauth/warden/pkg/slogx"
)

// AuthorizeService is the permission evaluation engine. Permissions are read
// fresh from the store on every call so revocations take effect immediately,
// without waiting for token expiry.
type AuthorizeService struct {
	Store store.Store
}

// Authorize reports whether the user holds ANY of the required permissions
// through its role assignments. An empty required set always passes.
func (s *AuthorizeService) Authorize(ctx context.Context, userID int64, required []string) (bool, error) {
	if len(required) == 0 {
		return true, nil
	}

	held, err := s.Store.Users().GetUserPermissions(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, want := range required {
		if slices.Contains(held, want) {
			return true, nil
		}
	}

	slogx.FromContext(ctx).Debug("authorization denied",
		slog.Int64("user_id", userID),
		slog.Any("required", required),
	)
	return false, nil
}

// ResolveUserPermissions returns the distinct permission names a user holds.
func (s *AuthorizeService) ResolveUserPermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.Store.Users().GetUserPermissions(ctx, userID)
}
