package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/service"
	"github.com/vidscribe/social-api/internal/transfer"
)

type PlatformHandler struct {
	ps service.PlatformService
}

func NewPlatformHandler(ps service.PlatformService) *PlatformHandler {
	return &PlatformHandler{ps: ps}
}

func (h *PlatformHandler) ConnectAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ConnectAccountRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	account, err := h.ps.Connect(c.Context(), userID, &req)
	if err != nil {
		return errJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(account)
}

func (h *PlatformHandler) DisconnectAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := models.Platform(c.Query("platform"))

	if err := h.ps.Disconnect(c.Context(), userID, platform); err != nil {
		return errJSON(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.ps.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}
	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *PlatformHandler) RefreshStats(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := models.Platform(c.Query("platform"))

	stats, err := h.ps.RefreshStats(c.Context(), userID, platform)
	if err != nil {
		return errJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}
