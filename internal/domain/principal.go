package domain

// Principal is the identity decoded from a bearer token.
type Principal struct {
	UserID   int64
	Username string
	Email    string
	Role     Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
