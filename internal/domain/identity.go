package domain

// Role represents an identity's authorization role as embedded in token claims
type Role string

const (
	// RoleAdmin grants full administrative access
	RoleAdmin Role = "admin"
	// RoleEditor grants write access
	RoleEditor Role = "editor"
	// RoleViewer grants read-only access
	RoleViewer Role = "viewer"
)

// String returns the role as a string
func (r Role) String() string {
	return string(r)
}

// Identity represents a verified user identity supplied by the login collaborator.
// The core never mutates it; a subset of its fields is embedded into claims.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Validate checks that the identity carries the fields required for issuance.
// The role set is open ended (callers may define their own roles), so only
// presence is enforced.
func (i Identity) Validate() error {
	if i.ID == "" || i.Email == "" || i.Role == "" {
		return ErrInvalidIdentity
	}
	return nil
}
