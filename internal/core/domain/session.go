package domain

// Scope selects one of the independent credential pairs a client holds.
type Scope string

const (
	// ScopePublic never carries credentials.
	ScopePublic Scope = "public"
	// ScopeUser is the end-user (student / visitor) session.
	ScopeUser Scope = "user"
	// ScopeAdmin is the administrator panel session.
	ScopeAdmin Scope = "admin"
)

func (s Scope) Valid() bool {
	return s == ScopeUser || s == ScopeAdmin
}

const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Subject is the account a session was issued for, as returned by the backend.
type Subject struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active Flag   `json:"is_active"`
}

// Elevated reports whether the subject holds the superadmin role.
func (s *Subject) Elevated() bool {
	return s != nil && s.Role == RoleSuperadmin
}

// Session pairs an opaque bearer token with the subject it belongs to.
type Session struct {
	Token   string   `json:"token"`
	Subject *Subject `json:"user,omitempty"`
}
