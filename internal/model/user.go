package model

import "time"

// Role values stored in users.role.  Roles gate booking cancellation
// and the admin moderation surface; they are never mutated by the
// booking core itself.
const (
	RoleTenant = "TENANT"
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
)

// User represents an account in the marketplace.  Tenants book rooms,
// owners list PGs and admins moderate both.  A blocked user keeps their
// rows but can no longer authenticate.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique login email (stored lowercase).
//  PasswordHash – bcrypt hash of the password.
//  Phone        – optional contact number.
//  Role         – TENANT, OWNER or ADMIN.
//  IsBlocked    – set by admins; blocks login and token refresh.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Phone        string    // users.phone
	Role         string    // users.role
	IsBlocked    bool      // users.is_blocked
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
