package middleware

import (
	"net/http/httptest"
	"testing"

	"veloce-backend/internal/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permissionApp(role string, permission string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("user", map[string]interface{}{"user_id": "u1", "role": role})
		}
		return c.Next()
	})
	app.Post("/action", AuthorizePermission(permission), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app
}

func TestAuthorizePermission_AllowsConfiguredRole(t *testing.T) {
	app := permissionApp("seller", constants.CreateCar)
	resp, err := app.Test(httptest.NewRequest("POST", "/action", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAuthorizePermission_WaiveFeeIsAdminOnly(t *testing.T) {
	for role, want := range map[string]int{
		"seller":     403,
		"dealership": 403,
		"admin":      200,
	} {
		app := permissionApp(role, constants.WaiveFee)
		resp, err := app.Test(httptest.NewRequest("POST", "/action", nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, "role %s", role)
	}
}

func TestAuthorizePermission_NoSessionUser(t *testing.T) {
	app := permissionApp("", constants.CreateCar)
	resp, err := app.Test(httptest.NewRequest("POST", "/action", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthorizePermission_UnknownPermission(t *testing.T) {
	app := permissionApp("admin", "LAUNCH_ROCKETS")
	resp, err := app.Test(httptest.NewRequest("POST", "/action", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
