package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docshare/internal/auth"
)

// SessionLocalKey is the key under which verified session claims are stored
// in Fiber's context locals.
const SessionLocalKey = "session"

// RequireSession verifies the Bearer session token on the Authorization
// header and stores the claims in context locals. Requests without a valid
// token are rejected with 401 before the handler runs.
func RequireSession(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := tokens.ParseSession(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session token")
		}

		c.Locals(SessionLocalKey, claims)
		return c.Next()
	}
}

// SessionFromCtx returns the claims stored by RequireSession, or nil when the
// request was not authenticated.
func SessionFromCtx(c *fiber.Ctx) *auth.SessionClaims {
	if v := c.Locals(SessionLocalKey); v != nil {
		if claims, ok := v.(*auth.SessionClaims); ok {
			return claims
		}
	}
	return nil
}
