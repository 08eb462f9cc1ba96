package domain

import "time"

// UserStatus represents lifecycle states for an account. Suspension is a
// terminal soft-state; accounts are never hard-deleted.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// Profile holds display and verification fields attached to a user.
type Profile struct {
	Name             string
	Phone            string
	Avatar           string
	IdentityVerified bool
	RealNameVerified bool
}

// Preferences captures buyer-side matching preferences.
type Preferences struct {
	Religions []string
	PriceMin  int64
	PriceMax  int64
	Locations []string
}

// Security carries login bookkeeping. LoginAttempts and LockUntil are
// schema-only: nothing in the login flow enforces a lockout threshold.
type Security struct {
	LoginAttempts      int
	LockUntil          *time.Time
	LastLogin          *time.Time
	LastPasswordChange *time.Time
}

// Statistics accumulates per-user marketplace counters.
type Statistics struct {
	Listings int64
	Matches  int64
	Views    int64
}

// User is the identity record for one registered account. PasswordHash never
// crosses the API boundary.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	Profile      Profile
	Preferences  Preferences
	Security     Security
	Statistics   Statistics
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
