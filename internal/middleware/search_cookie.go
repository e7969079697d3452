package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	searchCookieName = "veloce.search"
	searchIDLocal    = "search_id"
	searchMaxAgeSecs = 7 * 24 * 3600
)

// SearchCookie assigns every visitor an anonymous id that keys their
// search/filter session. Browsing is public, so this runs regardless of
// login state.
func SearchCookie() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(searchCookieName)
		if id == "" {
			id = uuid.New().String()
			c.Cookie(&fiber.Cookie{
				Name:     searchCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   searchMaxAgeSecs,
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}
		c.Locals(searchIDLocal, id)
		return c.Next()
	}
}

// GetSearchID returns the visitor's search session id.
func GetSearchID(c *fiber.Ctx) string {
	id, _ := c.Locals(searchIDLocal).(string)
	return id
}
