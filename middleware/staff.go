// middleware/staff.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"player-moderation-system/models"
)

// StaffContextMiddleware extracts the acting staff member's identity and
// capability set, both resolved and forwarded by the Gateway. All moderation
// routes require a staff identity; per-route capability checks happen in the
// handlers.
func StaffContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		staffID := c.Get("X-Staff-ID")
		if staffID == "" {
			log.Printf("🚫 [STAFF_CTX] X-Staff-ID missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Staff-ID — request must come through gateway with staff context",
			})
		}

		perms := models.ParsePermissions(c.Get("X-Staff-Permissions"))

		c.Locals("staff_id", staffID)
		c.Locals("staff_permissions", perms)

		return c.Next()
	}
}

// StaffID returns the acting staff member's id set by StaffContextMiddleware.
func StaffID(c *fiber.Ctx) string {
	id, _ := c.Locals("staff_id").(string)
	return id
}

// StaffPermissions returns the acting staff member's capability set.
func StaffPermissions(c *fiber.Ctx) models.Permission {
	p, _ := c.Locals("staff_permissions").(models.Permission)
	return p
}
