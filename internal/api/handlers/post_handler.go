package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/vidscribe/social-api/internal/models"
	"github.com/vidscribe/social-api/internal/service"
	"github.com/vidscribe/social-api/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{s: s}
}

// videoFile extracts the optional video upload from a multipart form.
func videoFile(c *fiber.Ctx) *multipart.FileHeader {
	file, err := c.FormFile("video")
	if err != nil {
		return nil
	}
	return file
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	req := transfer.SchedulePostRequest{
		Platform:     c.FormValue("platform"),
		Text:         c.FormValue("text"),
		ScheduledFor: c.FormValue("scheduledFor"),
	}

	post, err := h.s.Schedule(c.Context(), userID, &req, videoFile(c))
	if err != nil {
		return errJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) PublishNow(c *fiber.Ctx) error {
	userID := GetUserID(c)

	err := h.s.PublishNow(c.Context(), userID, c.FormValue("platform"), c.FormValue("text"), videoFile(c))
	if err != nil {
		return errJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Published successfully",
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Query("platform")

	if platform != "" {
		posts, err := h.s.ListByPlatform(c.Context(), userID, models.Platform(platform))
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(posts)
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return errJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return errJSON(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) ListHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)

	history, err := h.s.History(c.Context(), userID)
	if err != nil {
		return errJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(history)
}
