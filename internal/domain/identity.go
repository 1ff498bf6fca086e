package domain

// Identity is the authenticated caller, threaded explicitly through
// handlers and use cases. A zero Identity is an anonymous caller.
type Identity struct {
	UserID string
	Role   Role
}

// IsZero reports whether the identity is anonymous.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
