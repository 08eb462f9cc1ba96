package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plotmarket/plot-service/internal/domain"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

// IsAllowed reports whether actual is a member of the required set. An empty
// required set allows any role. Pure function, no side effects.
func IsAllowed(required []domain.Role, actual domain.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if role == actual {
			return true
		}
	}
	return false
}

// RequireRole gates a route to the given roles. Runs after the access guard:
// an absent principal is a 401, an insufficient role a 403.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !IsAllowed(allowed, principal.Role) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a caller passed the access guard.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
