package service

import (
	"context"
	"errors"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/internal/directory/store"
)

// UserService serves directory lookups for permission-gated endpoints.
type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user and its roles.
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (domain.User, []domain.Role, error) {
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

// ListRoles returns all roles with their permissions.
func (s *UserService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}
