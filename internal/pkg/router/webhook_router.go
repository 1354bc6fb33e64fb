package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quitanza/paycore/app/controllers"
)

// WebhookRouter installs the provider delivery endpoint. It sits outside
// the /api limiter group; providers retry on 429 and flood the queues.
type WebhookRouter struct {
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}

func (h *WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post("/webhooks/:provider", controllers.HandleWebhook)
}
