package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/vidscribe/social-api/configs"
	"github.com/vidscribe/social-api/internal/api/middleware"
	"github.com/vidscribe/social-api/internal/queue"
	"github.com/vidscribe/social-api/internal/repository"
	"github.com/vidscribe/social-api/internal/transfer"
	"github.com/vidscribe/social-api/pkg/utils"
)

// PublishHandler serves POST /social-publish: the endpoint the dashboard
// calls to publish a stored post right now. It re-authenticates the caller
// and re-checks ownership before dispatching, independent of any state the
// client claims to hold.
type PublishHandler struct {
	cfg config.Config
	pr  repository.PostRepository
	q   *queue.Queue
}

func NewPublishHandler(cfg config.Config, pr repository.PostRepository, q *queue.Queue) *PublishHandler {
	return &PublishHandler{cfg: cfg, pr: pr, q: q}
}

func (h *PublishHandler) Publish(c *fiber.Ctx) error {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No authorization header provided",
		})
	}

	claims, err := utils.ValidateToken(h.cfg.SecretKey, tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "postId is required",
		})
	}

	post, err := h.pr.GetByID(c.Context(), req.PostID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if post == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}
	if post.UserID != userID {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Post not found or unauthorized access",
		})
	}

	if err := h.q.PublishPost(c.Context(), post.ID); err != nil {
		return errJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"result": transfer.PublishResult{
			Platform:    string(post.Platform),
			PostID:      post.ID,
			PublishedAt: time.Now().UTC().Format(time.RFC3339),
		},
	})
}
