package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
)

// respondError maps a service error to its HTTP response. Categorized errors
// keep their kind and message; anything else is a masked 500.
func respondError(c *fiber.Ctx, err error) error {
	if appErr := apperrors.From(err); appErr != nil {
		return c.Status(appErr.StatusCode()).JSON(fiber.Map{
			"error":   string(appErr.Kind),
			"message": appErr.Message,
		})
	}
	log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_server_error",
		"message": "Internal server error",
	})
}

// paramUint parses a numeric path parameter, 0 when absent or invalid.
func paramUint(c *fiber.Ctx, name string) uint {
	id, err := c.ParamsInt(name)
	if err != nil || id < 0 {
		return 0
	}
	return uint(id)
}
