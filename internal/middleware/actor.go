package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// UserIDHeader names the acting user. Its value is trusted as-is.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

// Actor stores the acting user in the Fiber context for subsequent handlers.
// Requests without the header act as defaultUser. The stored value is a copy:
// it ends up in products that outlive the request buffer.
func Actor(defaultUser string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := utils.CopyString(strings.TrimSpace(c.Get(UserIDHeader)))
		if userID == "" {
			userID = defaultUser
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the user stored by Actor, or "" when Actor did not run.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)
	return userID
}
