package models

import "time"

// UserRole distinguishes ordinary users from administrators.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is an account holder. PinHash and BiometricEnabled live only in the
// local store and must never reach the remote store; Document omits them
// structurally rather than relying on serialization tags.
type User struct {
	Id        string
	Email     string
	Name      string
	Role      UserRole
	CreatedAt time.Time
	IsBlocked bool

	// Local-only device secrets.
	PinHash          []byte
	BiometricEnabled bool
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Document returns the remote replication payload without local-only fields.
func (u *User) Document() map[string]any {
	return map[string]any{
		"id":        u.Id,
		"email":     u.Email,
		"name":      u.Name,
		"role":      string(u.Role),
		"createdAt": u.CreatedAt.UnixMilli(),
		"isBlocked": u.IsBlocked,
	}
}
