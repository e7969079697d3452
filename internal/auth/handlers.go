package auth

import (
	"context"

	"veloce-backend/internal/middleware"
	"veloce-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	UserFinder UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /login — verifies credentials, rotates the session id and
// stores the user in the Redis session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body LoginInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if h.UserFinder == nil {
		return response.Error(c, "Auth not configured", 500, nil)
	}
	user, err := h.UserFinder.FindByEmailAndPassword(body.Email, body.Password)
	if err != nil {
		if err == ErrEmailPasswordRequired {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Invalid email or password", 401, nil)
	}

	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	})
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sid
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", SessionUserShape{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	}, nil)
}

// Me GET /me — returns the session user or 401.
func (h *Handlers) Me(c *fiber.Ctx) error {
	shape, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, err.Error())
	}
	return response.Success(c, "User verified", shape, nil)
}

// Logout DELETE /logout — drops the Redis session and clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sid := middleware.GetSessionID(c); sid != "" && h.Rdb != nil {
		h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sid)
	}
	middleware.DestroySession(c)
	c.Locals("session_id", "")
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logout successful", nil, nil)
}
