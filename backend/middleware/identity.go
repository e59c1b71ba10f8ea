package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fantasyrun/runner-market/backend/utils"
)

// UserHeader is set by the authenticating gateway in front of this service.
const UserHeader = "X-User-ID"

// UserRequired stores the caller's user id in the request locals.
// The header is trusted, only its shape is checked here.
func UserRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(UserHeader)
		if raw == "" {
			return utils.SendUnauthorized(c, "missing "+UserHeader+" header")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			slog.Debug("Rejected malformed user id",
				slog.String("type", "http"),
				slog.String("user_id", raw))
			return utils.SendUnauthorized(c, "malformed "+UserHeader+" header")
		}

		c.Locals(utils.UserIDKey, id.String())
		return c.Next()
	}
}
