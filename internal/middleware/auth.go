package middleware

import (
	"veloce-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetUserRole extracts the role from the session user ("" if absent).
func GetUserRole(c *fiber.Ctx) string {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return ""
	}
	r, _ := m["role"].(string)
	return r
}

// GetUserID extracts the user id from the session user ("" if absent).
func GetUserID(c *fiber.Ctx) string {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return ""
	}
	id, _ := m["user_id"].(string)
	return id
}
