// handlers/giftcode_routes.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"player-moderation-system/middleware"
	"player-moderation-system/models"
	"player-moderation-system/services"
)

func SetupGiftCodeRoutes(app *fiber.App, codeService *services.GiftCodeService) {
	staff := app.Group("/", middleware.StaffContextMiddleware())

	staff.Get("/giftcodes", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionGiftCodes) {
			return forbidden(c, models.PermissionGiftCodes)
		}
		codes, err := codeService.List()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(codes)
	})

	staff.Post("/giftcodes", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionGiftCodes) {
			return forbidden(c, models.PermissionGiftCodes)
		}
		var req struct {
			Name           string     `json:"name"`
			Code           string     `json:"code"`
			MaxUses        int        `json:"max_uses"`
			Role           string     `json:"role"`
			GiftDurationMs *int64     `json:"gift_duration_ms"`
			ExpiresAt      *time.Time `json:"expires_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		code, err := codeService.Create(services.CreateCodeInput{
			Name:           req.Name,
			Code:           req.Code,
			MaxUses:        req.MaxUses,
			RoleName:       req.Role,
			GiftDurationMs: req.GiftDurationMs,
			ExpiresAt:      req.ExpiresAt,
			CreatedBy:      middleware.StaffID(c),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(code)
	})

	staff.Get("/giftcodes/:code", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionGiftCodes) {
			return forbidden(c, models.PermissionGiftCodes)
		}
		code, err := codeService.Get(c.Params("code"))
		if err != nil {
			return respondError(c, err)
		}
		valid, _ := codeService.IsValid(code.Code)
		return c.JSON(fiber.Map{
			"code":      code,
			"valid":     valid,
			"uses_left": code.UsesLeft(),
		})
	})

	staff.Delete("/giftcodes/:id", func(c *fiber.Ctx) error {
		if !hasPermission(c, models.PermissionGiftCodes) {
			return forbidden(c, models.PermissionGiftCodes)
		}
		if err := codeService.Delete(c.Params("id"), middleware.StaffID(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "gift code deleted"})
	})

	// Redemption comes in on behalf of a player (bot or companion API),
	// not gated on a staff capability.
	staff.Post("/giftcodes/:code/redeem", func(c *fiber.Ctx) error {
		var req struct {
			UUID string `json:"uuid"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		expiresAt, err := codeService.Redeem(c.Params("code"), req.UUID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":    "gift code redeemed",
			"expires_at": expiresAt, // null = permanent
		})
	})
}
