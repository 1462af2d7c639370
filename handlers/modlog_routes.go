// handlers/modlog_routes.go
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"player-moderation-system/middleware"
	"player-moderation-system/services"
)

func SetupModLogRoutes(app *fiber.App, modlog *services.ModLog) {
	staff := app.Group("/", middleware.StaffContextMiddleware())

	staff.Get("/logs", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))
		entries, err := modlog.Entries(limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entries)
	})
}
