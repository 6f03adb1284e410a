// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
//
// The enumeration is closed: every switch over a UserRole must handle
// exactly these values plus an invalid default.
type UserRole string

const (
	// Unrestricted access to administrative operations
	RoleAdmin UserRole = "ADMIN"

	// Default role for standard registered users
	RoleUser UserRole = "USER"
)

// ParseRole converts a raw string into a [UserRole].
//
// Unknown values return false so callers never operate on an open-ended
// role string.
func ParseRole(raw string) (UserRole, bool) {
	switch UserRole(raw) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

// IsAdmin reports whether the role grants administrative access.
func (r UserRole) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// # Requester Identity

// Identity carries the authenticated requester attached to a request context.
type Identity struct {
	UserID string
	Role   UserRole
}
