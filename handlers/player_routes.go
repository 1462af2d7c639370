// handlers/player_routes.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"player-moderation-system/middleware"
	"player-moderation-system/models"
	"player-moderation-system/services"
)

func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService) {
	// 🔐 All moderation routes require staff context forwarded by the Gateway
	staff := app.Group("/", middleware.StaffContextMiddleware())

	staff.Get("/players/:uuid", func(c *fiber.Ctx) error {
		p, err := playerService.Get(c.Params("uuid"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	staff.Get("/players/discord/:id", func(c *fiber.Ctx) error {
		p, err := playerService.GetByDiscordID(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	staff.Post("/players", func(c *fiber.Ctx) error {
		var req struct {
			UUID     string `json:"uuid"`
			Username string `json:"username"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		p, err := playerService.Ensure(req.UUID, req.Username)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	// --- Bans ---

	staff.Post("/players/:uuid/ban", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionBans) {
			return forbidden(c, models.PermissionBans)
		}
		var req struct {
			Reason    string     `json:"reason"`
			ExpiresAt *time.Time `json:"expires_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := playerService.Ban(c.Params("uuid"), req.Reason, middleware.StaffID(c), req.ExpiresAt); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "player banned"})
	})

	staff.Delete("/players/:uuid/ban", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionBans) {
			return forbidden(c, models.PermissionBans)
		}
		if err := playerService.Unban(c.Params("uuid"), middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "player unbanned"})
	})

	// --- Tag ---

	staff.Put("/players/:uuid/tag", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionTags) {
			return forbidden(c, models.PermissionTags)
		}
		var req struct {
			Tag string `json:"tag"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := playerService.SetTag(c.Params("uuid"), req.Tag, middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "tag set"})
	})

	staff.Delete("/players/:uuid/tag", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionTags) {
			return forbidden(c, models.PermissionTags)
		}
		if err := playerService.ClearTag(c.Params("uuid"), middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "tag cleared"})
	})

	// --- Watchlist ---

	staff.Put("/players/:uuid/watchlist", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionWatchlist) {
			return forbidden(c, models.PermissionWatchlist)
		}
		var req struct {
			Watching bool `json:"watching"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := playerService.SetWatchlist(c.Params("uuid"), req.Watching, middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "watchlist updated", "watching": req.Watching})
	})

	// --- Notes ---

	staff.Get("/players/:uuid/notes", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionNotes) {
			return forbidden(c, models.PermissionNotes)
		}
		notes, err := playerService.Notes(c.Params("uuid"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(notes)
	})

	staff.Post("/players/:uuid/notes", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionNotes) {
			return forbidden(c, models.PermissionNotes)
		}
		var req struct {
			Body string `json:"body"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		note, err := playerService.AddNote(c.Params("uuid"), req.Body, middleware.StaffID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(note)
	})

	staff.Delete("/players/:uuid/notes/:note_id", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionNotes) {
			return forbidden(c, models.PermissionNotes)
		}
		if err := playerService.DeleteNote(c.Params("uuid"), c.Params("note_id"), middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "note deleted"})
	})

	// --- Reports ---

	staff.Get("/players/:uuid/reports", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionReports) {
			return forbidden(c, models.PermissionReports)
		}
		includeResolved := c.Query("resolved") == "true"
		reports, err := playerService.Reports(c.Params("uuid"), includeResolved)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reports)
	})

	staff.Post("/players/:uuid/reports", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionReports) {
			return forbidden(c, models.PermissionReports)
		}
		var req struct {
			ReporterUUID string `json:"reporter_uuid"`
			Reason       string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		report, err := playerService.AddReport(c.Params("uuid"), req.ReporterUUID, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	})

	staff.Post("/players/:uuid/reports/:report_id/resolve", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionReports) {
			return forbidden(c, models.PermissionReports)
		}
		if err := playerService.ResolveReport(c.Params("uuid"), c.Params("report_id"), middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "report resolved"})
	})

	// --- API keys ---

	staff.Get("/players/:uuid/keys", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionAPIKeys) {
			return forbidden(c, models.PermissionAPIKeys)
		}
		keys, err := playerService.APIKeys(c.Params("uuid"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(keys)
	})

	staff.Post("/players/:uuid/keys", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionAPIKeys) {
			return forbidden(c, models.PermissionAPIKeys)
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		key, err := playerService.CreateAPIKey(c.Params("uuid"), req.Name, middleware.StaffID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(key)
	})

	staff.Delete("/players/:uuid/keys/:key", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionAPIKeys) {
			return forbidden(c, models.PermissionAPIKeys)
		}
		if err := playerService.RevokeAPIKey(c.Params("uuid"), c.Params("key"), middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "API key revoked"})
	})
}
