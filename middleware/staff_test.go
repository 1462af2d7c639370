package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"player-moderation-system/models"
)

func staffTestApp() *fiber.App {
	app := fiber.New()
	app.Use(StaffContextMiddleware())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"staff_id":    StaffID(c),
			"permissions": uint32(StaffPermissions(c)),
		})
	})
	return app
}

func TestStaffContextRequiresStaffID(t *testing.T) {
	app := staffTestApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStaffContextForwardsIdentity(t *testing.T) {
	app := staffTestApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-Staff-ID", "staff42")
	req.Header.Set("X-Staff-Permissions", "bans,roles")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		StaffID     string `json:"staff_id"`
		Permissions uint32 `json:"permissions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "staff42", body.StaffID)

	perms := models.Permission(body.Permissions)
	require.True(t, perms.Has(models.PermissionBans))
	require.True(t, perms.Has(models.PermissionRoles))
	require.False(t, perms.Has(models.PermissionGiftCodes))
}

func TestGatewayAuthMiddleware(t *testing.T) {
	t.Setenv("MODERATION_SERVICE_TOKEN", "secret-token")

	app := fiber.New()
	app.Use(GatewayAuthMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
