package domain

import "time"

// Role enumerates the closed set of marketplace roles.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ValidRole reports whether r is a member of the closed role set.
func ValidRole(r Role) bool {
	return r == RoleBuyer || r == RoleSeller
}

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
