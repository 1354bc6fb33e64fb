package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quitanza/paycore/internal/pkg/cache"
)

// HandleQueueStatus reports pending/processing counts and lifetime stats
// for both durable queues.
func HandleQueueStatus(c *fiber.Ctx) error {
	status, err := queueManager.Status(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to read queue status"})
	}
	return c.JSON(fiber.Map{"running": queueManager.IsRunning(), "queues": status})
}

// HandleHealth is the liveness probe. Redis connectivity is reported but
// does not fail the check; the HTTP surface can accept webhooks while
// Redis recovers.
func HandleHealth(c *fiber.Ctx) error {
	redisOK := true
	if err := cache.GetClient().Ping(c.Context()).Err(); err != nil {
		redisOK = false
	}
	return c.JSON(fiber.Map{"status": "ok", "redis": redisOK})
}
