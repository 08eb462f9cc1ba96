package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/plotmarket/plot-service/internal/api/dto"
	"github.com/plotmarket/plot-service/internal/auth"
	"github.com/plotmarket/plot-service/internal/domain"
	"github.com/plotmarket/plot-service/internal/service"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return apperrors.NewValidationError("email, password, role required", nil)
	}
	if len(req.Password) < 6 {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Email, req.Password, domain.Role(req.Role), req.Name, req.Phone)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.auth.Profile(c.Context(), principal.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(user)})
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateProfile(c.Context(), principal.SubjectID, service.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
		Religions: req.Religions,
		PriceMin:  req.PriceMin,
		PriceMax:  req.PriceMax,
		Locations: req.Locations,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(user)})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password and new_password required", nil)
	}
	if len(req.NewPassword) < 6 {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	if err := h.auth.ChangePassword(c.Context(), principal.SubjectID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	token, err := h.auth.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}
	// delivery is out of band; the token is returned for now
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"token":      token.Token,
			"expires_at": token.ExpiresAt,
		},
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new_password required", nil)
	}
	if len(req.NewPassword) < 6 {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
