// handlers/errors.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"player-moderation-system/middleware"
	"player-moderation-system/models"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Internal
// (persistence) failures surface as 503 — the mutation must be assumed not
// committed and the caller may safely retry.
func respondError(c *fiber.Ctx, err error) error {
	var gerr *goerrors.Error
	if goerrors.As(err, &gerr) {
		status := fiber.StatusInternalServerError
		switch gerr.Category {
		case goerrors.CategoryNotFound:
			status = fiber.StatusNotFound
		case goerrors.CategoryConflict:
			status = fiber.StatusConflict
		case goerrors.CategoryValidation:
			status = fiber.StatusBadRequest
		case goerrors.CategoryAuthz:
			status = fiber.StatusForbidden
		case goerrors.CategoryInternal:
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{"error": gerr.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// forbidden rejects a request lacking the named capability. Authorization
// lives here in the handler layer — the services trust their callers.
func forbidden(c *fiber.Ctx, perm models.Permission) error {
	name := "unknown"
	if names := perm.Names(); len(names) > 0 {
		name = names[0]
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "missing permission: " + name,
	})
}

// hasPermission checks the staff capability set from the request context.
func hasPermission(c *fiber.Ctx, perm models.Permission) bool {
	return middleware.StaffPermissions(c).Has(perm)
}
