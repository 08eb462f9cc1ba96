package dto

import (
	"time"

	"github.com/plotmarket/plot-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public-safe projection of an account.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ProfileResponse is the full own-account view.
type ProfileResponse struct {
	ID          string              `json:"id"`
	Email       string              `json:"email"`
	Role        string              `json:"role"`
	Status      string              `json:"status"`
	Profile     ProfileFields       `json:"profile"`
	Preferences PreferenceFields    `json:"preferences"`
	Statistics  UserStatisticFields `json:"statistics"`
	LastLogin   *time.Time          `json:"last_login,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ProfileFields mirrors domain.Profile.
type ProfileFields struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Avatar           string `json:"avatar"`
	IdentityVerified bool   `json:"identity_verified"`
	RealNameVerified bool   `json:"real_name_verified"`
}

// PreferenceFields mirrors domain.Preferences.
type PreferenceFields struct {
	Religions []string `json:"religions"`
	PriceMin  int64    `json:"price_min"`
	PriceMax  int64    `json:"price_max"`
	Locations []string `json:"locations"`
}

// UserStatisticFields mirrors domain.Statistics.
type UserStatisticFields struct {
	Listings int64 `json:"listings"`
	Matches  int64 `json:"matches"`
	Views    int64 `json:"views"`
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Name      *string  `json:"name"`
	Phone     *string  `json:"phone"`
	Avatar    *string  `json:"avatar"`
	Religions []string `json:"religions"`
	PriceMin  *int64   `json:"price_min"`
	PriceMax  *int64   `json:"price_max"`
	Locations []string `json:"locations"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// NewUserResponse maps a domain user to its public projection.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

// NewProfileResponse maps a domain user to the own-account view.
func NewProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:     user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		Status: string(user.Status),
		Profile: ProfileFields{
			Name:             user.Profile.Name,
			Phone:            user.Profile.Phone,
			Avatar:           user.Profile.Avatar,
			IdentityVerified: user.Profile.IdentityVerified,
			RealNameVerified: user.Profile.RealNameVerified,
		},
		Preferences: PreferenceFields{
			Religions: user.Preferences.Religions,
			PriceMin:  user.Preferences.PriceMin,
			PriceMax:  user.Preferences.PriceMax,
			Locations: user.Preferences.Locations,
		},
		Statistics: UserStatisticFields{
			Listings: user.Statistics.Listings,
			Matches:  user.Statistics.Matches,
			Views:    user.Statistics.Views,
		},
		LastLogin: user.Security.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}
