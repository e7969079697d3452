package health

import (
	"veloce-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Rdb            *redis.Client
	DB             DBPinger
	HealthAdminKey string
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := CollectHealth(c.Context(), h.Rdb, h.DB)
	return c.Status(fiber.StatusOK).JSON(result)
}

// Reset GET /health/reset — requires the admin key.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if h.HealthAdminKey == "" || c.Query("key") != h.HealthAdminKey {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := ResetCounters(c.Context(), h.Rdb); err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Health counters reset", nil, nil)
}
