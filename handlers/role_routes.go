// handlers/role_routes.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"player-moderation-system/middleware"
	"player-moderation-system/models"
	"player-moderation-system/services"
)

func SetupRoleRoutes(app *fiber.App, roleService *services.RoleService) {
	staff := app.Group("/", middleware.StaffContextMiddleware())

	// Active roles only; the full grant history travels with GET /players/:uuid
	staff.Get("/players/:uuid/roles", func(c *fiber.Ctx) error {
		roles, err := roleService.Active(c.Params("uuid"))
		if err != nil {
			return respondError(c, err)
		}
		if roles == nil {
			roles = []models.RoleGrant{}
		}
		return c.JSON(roles)
	})

	staff.Post("/players/:uuid/roles", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionRoles) {
			return forbidden(c, models.PermissionRoles)
		}
		var req struct {
			Role      string     `json:"role"`
			Reason    string     `json:"reason"`
			ExpiresAt *time.Time `json:"expires_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		staffID := middleware.StaffID(c)
		reason := req.Reason
		if reason == "" {
			reason = "Granted by " + staffID
		}
		grant, err := roleService.Grant(c.Params("uuid"), req.Role, staffID, services.GrantOptions{
			Reason:        reason,
			ManuallyAdded: true,
			ExpiresAt:     req.ExpiresAt,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(grant)
	})

	staff.Delete("/players/:uuid/roles/:role", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionRoles) {
			return forbidden(c, models.PermissionRoles)
		}
		if err := roleService.Remove(c.Params("uuid"), c.Params("role"), middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "role removed"})
	})

	// Bulk edit: the request body is the complete desired active set.
	staff.Put("/players/:uuid/roles", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionRoles) {
			return forbidden(c, models.PermissionRoles)
		}
		var req struct {
			Roles []string `json:"roles"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		staffID := middleware.StaffID(c)
		added, removed, err := roleService.Reconcile(c.Params("uuid"), req.Roles, services.GrantOptions{
			Reason:        "Bulk edit by " + staffID,
			ManuallyAdded: true,
		}, staffID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"added": added, "removed": removed})
	})
}
