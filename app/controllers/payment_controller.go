package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quitanza/paycore/internal/pkg/jobqueue"
	"github.com/quitanza/paycore/internal/pkg/payment"
)

var (
	paymentService *payment.Service
	queueManager   *jobqueue.Manager
)

// InitializePaymentController wires the orchestrator and queue manager
// into the package-level handlers.
func InitializePaymentController(svc *payment.Service, mgr *jobqueue.Manager) {
	paymentService = svc
	queueManager = mgr
}

func companyID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get("X-Company-ID"))
}

// HandleCreateCustomer registers a customer with the active provider.
func HandleCreateCustomer(c *fiber.Ctx) error {
	var params payment.CreateCustomerParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid JSON body"})
	}

	customer, err := paymentService.CreateCustomer(c.Context(), params, companyID(c))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// HandleGetCustomerByDocument looks a customer up by CPF/CNPJ.
func HandleGetCustomerByDocument(c *fiber.Ctx) error {
	document := strings.TrimSpace(c.Query("cpfCnpj"))
	if document == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "cpfCnpj query parameter is required"})
	}

	customer, err := paymentService.GetCustomerByDocument(c.Context(), document, companyID(c))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	if customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Customer not found"})
	}
	return c.JSON(customer)
}

// HandleCreatePayment issues a charge. With ?async=true the operation is
// queued and the job id returned instead.
func HandleCreatePayment(c *fiber.Ctx) error {
	var params payment.CreatePaymentParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid JSON body"})
	}

	if c.QueryBool("async") {
		var raw map[string]interface{}
		if err := c.BodyParser(&raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid JSON body"})
		}
		job, err := queueManager.PaymentQueue().EnqueueJob(jobqueue.JobTypePaymentOperation, jobqueue.PaymentJobPayload{
			Operation: "createPayment",
			Params:    raw,
			CompanyID: companyID(c),
		}.ToMap())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to enqueue payment"})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"jobId": job.ID, "status": string(job.Status)})
	}

	p, err := paymentService.CreatePayment(c.Context(), params, companyID(c))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// HandleGetPayment returns one payment by provider id.
func HandleGetPayment(c *fiber.Ctx) error {
	p, err := paymentService.GetPayment(c.Context(), c.Params("id"), companyID(c))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(p)
}

// HandleGetPaymentByExternalReference resolves a payment from our own
// reference.
func HandleGetPaymentByExternalReference(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Query("externalReference"))
	if ref == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "externalReference query parameter is required"})
	}

	p, err := paymentService.GetPaymentByExternalReference(c.Context(), ref, companyID(c))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Payment not found"})
	}
	return c.JSON(p)
}

// HandleRefundPayment refunds a payment, fully unless valueCents is set.
func HandleRefundPayment(c *fiber.Ctx) error {
	params := payment.RefundParams{PaymentID: c.Params("id")}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid JSON body"})
		}
		params.PaymentID = c.Params("id")
	}

	p, err := paymentService.RefundPayment(c.Context(), params, companyID(c))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(p)
}

// HandleCancelPayment cancels a pending payment.
func HandleCancelPayment(c *fiber.Ctx) error {
	if err := paymentService.CancelPayment(c.Context(), c.Params("id"), companyID(c)); err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true, "id": c.Params("id")})
}

// paymentErrorResponse maps the error taxonomy onto HTTP statuses. Raw
// gateway errors never reach the response body.
func paymentErrorResponse(c *fiber.Ctx, err error) error {
	if payment.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": payment.CodePaymentNotFound, "message": "Payment not found"})
	}
	if payment.IsTransient(err) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": payment.CodeProviderUnavailable, "message": "Payment provider is unavailable"})
	}

	var perr *payment.Error
	if errors.As(err, &perr) {
		switch perr.Code {
		case payment.CodeValidation:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": perr.Code, "message": perr.Message})
		case payment.CodeRateLimited:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": perr.Code, "message": perr.Message})
		default:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": perr.Code, "message": perr.Message})
		}
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Payment operation failed"})
}
