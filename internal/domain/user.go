package domain

import (
	"fmt"
	"time"
)

// Role is a user's access role.
type Role string

const (
	// RoleUser is the default role for new registrations.
	RoleUser Role = "user"
	// RoleAdmin can approve/reject theses and manage users.
	RoleAdmin Role = "admin"
	// RoleFaculty is a faculty member.
	RoleFaculty Role = "faculty"
	// RoleStudent is a student.
	RoleStudent Role = "student"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleFaculty, RoleStudent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// User is a registered account. PasswordHash is a bcrypt hash and is
// never serialized to API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}
