package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/quitanza/paycore/internal/pkg/jobqueue"
)

// signatureHeaders maps each provider to the header carrying its webhook
// signature or access token.
var signatureHeaders = map[string]string{
	"asaas":  "asaas-access-token",
	"stripe": "Stripe-Signature",
	"custom": "X-Signature",
}

// HandleWebhook accepts a provider delivery and queues it for durable
// processing. The raw body is preserved byte for byte so signature
// verification happens inside the worker, after the 200 was sent.
func HandleWebhook(c *fiber.Ctx) error {
	provider := c.Params("provider")
	header, ok := signatureHeaders[provider]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown webhook provider"})
	}

	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Empty webhook body"})
	}

	payload := jobqueue.WebhookJobPayload{
		Provider:  provider,
		RawBody:   string(body),
		Signature: c.Get(header),
	}
	job, err := queueManager.WebhookQueue().EnqueueJob(jobqueue.JobTypeWebhookDelivery, payload.ToMap())
	if err != nil {
		log.Errorf("[WebhookController] Failed to enqueue %s delivery: %v", provider, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to queue webhook"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"received": true, "jobId": job.ID})
}
