package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/plotmarket/plot-service/internal/domain"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal is the authenticated caller, recovered from token claims and
// attached to one in-flight request. It holds no database state; handlers
// that need the full record load it by SubjectID.
type Principal struct {
	SubjectID string
	Email     string
	Role      domain.Role
}

// Middleware validates bearer tokens on protected routes.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the access guard.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle extracts the bearer credential, validates it and attaches the
// principal. Missing header, malformed scheme and invalid token all reject
// with 401.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Parse(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
