package store

import (
	"context"
	"errors"
	"time"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Roles() Roles
	DeletionTokens() DeletionTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh
	// rotation). The caller MUST call Commit() or Rollback() on the
	// returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	// This is the recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by numeric id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername looks up a user by canonical (lowercase) username.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns the store-assigned id.
	// Returns ErrAlreadyExists on a username collision.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error

	// UpdateRefreshTokenHash binds a refresh token fingerprint to the user,
	// nil clears the binding.
	UpdateRefreshTokenHash(ctx context.Context, userID int64, hash *string) error

	// DeleteUser cascades to user_roles and deletion_tokens (per schema).
	DeleteUser(ctx context.Context, userID int64) error

	// AssignRole grants a role to a user; assigning an already-held role
	// is a no-op.
	AssignRole(ctx context.Context, userID, roleID int64) error

	// GetUserRoles returns the roles held by a user (without permissions).
	GetUserRoles(ctx context.Context, userID int64) ([]domain.Role, error)

	// GetUserPermissions returns the distinct permission names granted to
	// a user through its roles.
	GetUserPermissions(ctx context.Context, userID int64) ([]string, error)
}

type Roles interface {
	// GetRoleByID fetches a role with its permissions.
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)

	// GetRoleByName fetches a role by name (used when assigning defaults).
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles with their permissions, ordered by name.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role and returns the store-assigned id.
	CreateRole(ctx context.Context, r domain.Role) (int64, error)

	// GrantPermission attaches a permission to a role by name.
	GrantPermission(ctx context.Context, roleID int64, permission string) error
}

type DeletionTokens interface {
	// CreateDeletionToken stores a pending deletion request. Any previous
	// unused tokens for the same user are superseded (marked used).
	CreateDeletionToken(ctx context.Context, t domain.DeletionToken) error

	// GetActiveDeletionToken returns the not-used, not-expired token for a
	// user, if any.
	GetActiveDeletionToken(ctx context.Context, userID int64, now time.Time) (domain.DeletionToken, error)

	// MarkDeletionTokenUsed consumes a token so it cannot be replayed.
	MarkDeletionTokenUsed(ctx context.Context, id idx.ID) error

	// DeleteExpiredDeletionTokens is housekeeping.
	DeleteExpiredDeletionTokens(ctx context.Context, now time.Time) error
}
