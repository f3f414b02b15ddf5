package domain

import "time"

// Role is a named grouping of permissions assignable to users.
type Role struct {
	ID          int64
	Name        string
	Description string

	// Permissions is populated when the role is loaded with its grants.
	Permissions []Permission

	CreatedAt time.Time
}

// Permission is a single named capability, e.g. "user_read".
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Default role and permission names seeded by migrations.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"

	PermUserRead  = "user_read"
	PermUserWrite = "user_write"
	PermRoleRead  = "role_read"
	PermRoleWrite = "role_write"
)
