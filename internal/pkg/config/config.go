package config

import (
	"strconv"
	"time"

	"github.com/quitanza/paycore/internal/pkg/env"
)

// Environment selects the safety posture of the payment core. The custom
// gateway is blocked outright when the environment is production.
type Environment string

const (
	EnvironmentTest       Environment = "test"
	EnvironmentProduction Environment = "production"
)

// Config carries everything the payment core needs; no package below the
// factory reads environment variables directly.
type Config struct {
	Provider    string
	Environment Environment

	Asaas  AsaasConfig
	Stripe StripeConfig

	Security SecurityConfig
	Queue    QueueConfig
}

// AsaasConfig is the credential set for the Asaas adapter.
type AsaasConfig struct {
	APIKey        string
	APIURL        string
	WebhookToken  string
	ClientTimeout time.Duration
}

// StripeConfig is the credential set for the Stripe adapter.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// SecurityConfig groups encryption and rate limiting knobs.
type SecurityConfig struct {
	EncryptionKey        string
	WebhookSecret        string
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
}

// QueueConfig controls worker concurrency for both durable queues.
type QueueConfig struct {
	PaymentWorkers int
	WebhookWorkers int
}

// Load reads the payment core configuration from the environment.
func Load() Config {
	return Config{
		Provider:    env.GetEnv("PAYMENT_PROVIDER", "asaas"),
		Environment: Environment(env.GetEnv("PAYMENT_ENVIRONMENT", string(EnvironmentTest))),
		Asaas: AsaasConfig{
			APIKey:        env.GetEnv("ASAAS_API_KEY", ""),
			APIURL:        env.GetEnv("ASAAS_API_URL", "https://api.asaas.com/v3"),
			WebhookToken:  env.GetEnv("ASAAS_WEBHOOK_TOKEN", ""),
			ClientTimeout: getDuration("ASAAS_TIMEOUT_MS", 15000),
		},
		Stripe: StripeConfig{
			APIKey:        env.GetEnv("STRIPE_API_KEY", ""),
			WebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Security: SecurityConfig{
			EncryptionKey:        env.GetEnv("PAYMENT_ENCRYPTION_KEY", ""),
			WebhookSecret:        env.GetEnv("PAYMENT_WEBHOOK_SECRET", ""),
			RateLimitMaxRequests: getInt("PAYMENT_RATE_LIMIT_MAX", 100),
			RateLimitWindow:      getDuration("PAYMENT_RATE_LIMIT_WINDOW_MS", 60000),
		},
		Queue: QueueConfig{
			PaymentWorkers: getInt("PAYMENT_QUEUE_WORKERS", 5),
			WebhookWorkers: getInt("WEBHOOK_QUEUE_WORKERS", 5),
		},
	}
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(env.GetEnv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getDuration(key string, defMillis int) time.Duration {
	return time.Duration(getInt(key, defMillis)) * time.Millisecond
}
