package handlers

import (
	"strings"

	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/services"

	"github.com/gofiber/fiber/v2"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// RequireUser resolves the bearer token to an account and stores it in
// Locals; requests without a valid token get 401.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return jsonError(c, fiber.StatusUnauthorized, "authentication required")
		}
		u, err := auth.CurrentUser(tok)
		if err != nil || u == nil {
			return jsonError(c, fiber.StatusUnauthorized, "authentication required")
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return jsonError(c, fiber.StatusUnauthorized, "authentication required")
		}
		u, err := auth.CurrentUser(tok)
		if err != nil || u == nil || !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return jsonError(c, fiber.StatusForbidden, "access denied")
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}
