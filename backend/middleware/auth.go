package middleware

import (
	"learntube/backend/config"
	"learntube/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware rejects requests without a valid bearer token. Handlers
// re-extract the user ID themselves so the credential stays request-scoped.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := utils.ExtractUserIDFromToken(c, cfg); err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}
