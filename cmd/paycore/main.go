package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/quitanza/paycore/app/controllers"
	"github.com/quitanza/paycore/internal/pkg/audit"
	"github.com/quitanza/paycore/internal/pkg/cache"
	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/database"
	"github.com/quitanza/paycore/internal/pkg/env"
	"github.com/quitanza/paycore/internal/pkg/jobqueue"
	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/payment/factory"
	"github.com/quitanza/paycore/internal/pkg/ratelimit"
	"github.com/quitanza/paycore/internal/pkg/router"
	"github.com/quitanza/paycore/internal/pkg/txlog"
	"github.com/quitanza/paycore/internal/pkg/webhook"
)

func main() {
	app, shutdown := NewApplication()

	// Graceful shutdown: stop accepting requests, then drain the queues
	// and the audit exporter.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("[Main] Shutting down...")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Errorf("[Main] Server error: %v", err)
	}

	shutdown()
}

// NewApplication wires the payment core: provider adapter, orchestrator,
// webhook processor, durable queues, audit export and the HTTP surface.
// The returned func stops the background workers.
func NewApplication() (*fiber.App, func()) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	cfg := config.Load()

	provider, err := factory.CreatePaymentProvider(cfg)
	if err != nil {
		log.Fatalf("[Main] Failed to create payment provider: %v", err)
	}

	limiter := ratelimit.NewRedisLimiter(cache.GetClient(), cfg.Security.RateLimitMaxRequests, cfg.Security.RateLimitWindow)
	logs := txlog.NewRepository(database.GetDB())
	svc := payment.NewService(provider, logs, limiter)

	proc := webhook.NewProcessor(
		provider,
		webhook.NewEventRepository(database.GetDB()),
		webhook.NewAgreementRepository(database.GetDB()),
		webhookSecret(cfg),
	)

	exporter := setupAuditExporter(logs, provider.Name())

	manager := jobqueue.GetManager()
	manager.PaymentQueue().RegisterHandler(jobqueue.JobTypePaymentOperation, jobqueue.NewPaymentOperationHandler(svc))
	manager.WebhookQueue().RegisterHandler(jobqueue.JobTypeWebhookDelivery, jobqueue.NewWebhookDeliveryHandler(proc))
	manager.Start()

	controllers.InitializePaymentController(svc, manager)

	app := fiber.New(fiber.Config{
		AppName: "paycore",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app)

	shutdown := func() {
		if exporter != nil {
			exporter.Stop()
		}
		manager.Stop()
	}
	return app, shutdown
}

// setupAuditExporter starts the periodic S3 export of transaction log
// rows when configured, returns nil when archiving is off.
func setupAuditExporter(logs txlog.Repository, providerName string) *audit.Exporter {
	auditCfg, err := audit.LoadConfig()
	if err != nil {
		log.Errorf("[Main] Invalid audit archive config: %v", err)
		return nil
	}
	if !auditCfg.IsEnabled() {
		return nil
	}

	archiver, err := audit.NewArchiver(auditCfg)
	if err != nil {
		log.Errorf("[Main] Failed to initialize audit archiver: %v", err)
		return nil
	}

	exporter := audit.NewExporter(archiver, logs, providerName, auditCfg)
	exporter.Start()
	return exporter
}

// webhookSecret picks the verification secret matching the active
// provider.
func webhookSecret(cfg config.Config) string {
	switch cfg.Provider {
	case "asaas":
		return cfg.Asaas.WebhookToken
	case "stripe":
		return cfg.Stripe.WebhookSecret
	default:
		return cfg.Security.WebhookSecret
	}
}
