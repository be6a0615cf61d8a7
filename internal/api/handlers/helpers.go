package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// errStatus maps the service error taxonomy onto HTTP statuses.
func errStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidPlatform),
		errors.Is(err, service.ErrInvalidCredential),
		errors.Is(err, service.ErrMissingParameter),
		errors.Is(err, service.ErrBusinessAccountRequired),
		errors.Is(err, service.ErrPublishFailed),
		errors.Is(err, service.ErrPostNotPending):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrAccountNotConnected):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func errJSON(c *fiber.Ctx, err error) error {
	return c.Status(errStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
