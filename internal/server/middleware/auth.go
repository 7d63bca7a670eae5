// Package middleware holds the fiber middleware shared by all routes.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"roster-portal/internal/security"
)

const bearerPrefix = "Bearer "

// RequireAuth validates the Bearer access token and stores the caller's
// user_id and session_id in the request context for handlers and services.
func RequireAuth(tokens *security.TokenProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authz, bearerPrefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
				"code":  "UNAUTHENTICATED",
			})
		}
		sessionID, userID, err := tokens.ValidateAccess(strings.TrimPrefix(authz, bearerPrefix))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
				"code":  "UNAUTHENTICATED",
			})
		}
		c.Locals("user_id", userID)
		c.Locals("session_id", sessionID)
		c.SetUserContext(WithAuthContext(c.UserContext(), userID, sessionID))
		return c.Next()
	}
}

// OptionalAuth populates the auth context when a valid Bearer token is present
// and always continues. Used on the /api/auth group so logout can revoke the
// caller's session without a refresh token in the body.
func OptionalAuth(tokens *security.TokenProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(authz, bearerPrefix) {
			if sessionID, userID, err := tokens.ValidateAccess(strings.TrimPrefix(authz, bearerPrefix)); err == nil {
				c.Locals("user_id", userID)
				c.Locals("session_id", sessionID)
				c.SetUserContext(WithAuthContext(c.UserContext(), userID, sessionID))
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth, or "".
func UserID(c *fiber.Ctx) string {
	v, _ := c.Locals("user_id").(string)
	return v
}

// SessionID returns the authenticated session id set by RequireAuth, or "".
func SessionID(c *fiber.Ctx) string {
	v, _ := c.Locals("session_id").(string)
	return v
}
