package router

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/quitanza/paycore/app/controllers"
	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/env"
)

type ApiRouter struct {
	cfg config.Config
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{cfg: config.Load()}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        h.cfg.Security.RateLimitMaxRequests,
		Expiration: h.cfg.Security.RateLimitWindow,
		Storage:    newLimiterStorage(),
		KeyGenerator: func(c *fiber.Ctx) string {
			// One window per company tenant, falling back to the caller IP.
			if company := c.Get("X-Company-ID"); company != "" {
				return company
			}
			return c.IP()
		},
	}))

	v1 := api.Group("/v1")
	v1.Post("/customers", controllers.HandleCreateCustomer)
	v1.Get("/customers", controllers.HandleGetCustomerByDocument)
	v1.Post("/payments", controllers.HandleCreatePayment)
	v1.Get("/payments", controllers.HandleGetPaymentByExternalReference)
	v1.Get("/payments/:id", controllers.HandleGetPayment)
	v1.Post("/payments/:id/refund", controllers.HandleRefundPayment)
	v1.Delete("/payments/:id", controllers.HandleCancelPayment)

	app.Get("/queue/status", controllers.HandleQueueStatus)
	app.Get("/health", controllers.HandleHealth)
}

// newLimiterStorage backs the HTTP limiter with Redis so all instances
// share one window. DB 1 keeps limiter keys apart from the job queues.
func newLimiterStorage() *redisstorage.Storage {
	port, err := strconv.Atoi(env.GetEnv("PAYMENT_REDIS_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host:     env.GetEnv("PAYMENT_REDIS_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("PAYMENT_REDIS_PASSWORD", ""),
		Database: 1,
		Reset:    false,
	})
}
