package factory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/payment/asaas"
	"github.com/quitanza/paycore/internal/pkg/payment/customgw"
	"github.com/quitanza/paycore/internal/pkg/payment/stripegw"
)

// Factory builds provider adapters and caches them per credential set,
// so repeated lookups with the same configuration share one instance.
type Factory struct {
	mu    sync.Mutex
	cache map[string]payment.Provider
}

func New() *Factory {
	return &Factory{cache: make(map[string]payment.Provider)}
}

// Create returns the adapter for cfg.Provider. The custom test gateway
// is rejected in production before any construction happens.
func (f *Factory) Create(cfg config.Config) (payment.Provider, error) {
	if cfg.Provider == customgw.ProviderName && cfg.Environment == config.EnvironmentProduction {
		return nil, payment.ErrCustomGatewayProductionBlocked
	}

	key := cacheKey(cfg)

	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.cache[key]; ok {
		return p, nil
	}

	p, err := build(cfg)
	if err != nil {
		return nil, err
	}

	log.Infof("[Factory] Created payment provider: %s (%s)", p.Name(), cfg.Environment)
	f.cache[key] = p
	return p, nil
}

// ResetCache drops all cached adapters. Meant for credential rotation
// and tests.
func (f *Factory) ResetCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]payment.Provider)
}

func build(cfg config.Config) (payment.Provider, error) {
	switch cfg.Provider {
	case asaas.ProviderName:
		return asaas.New(cfg.Asaas.APIURL, cfg.Asaas.APIKey, cfg.Asaas.ClientTimeout), nil
	case stripegw.ProviderName:
		return stripegw.New(cfg.Stripe.APIKey), nil
	case customgw.ProviderName:
		return customgw.New(cfg.Environment)
	default:
		return nil, payment.NewError(payment.CodePaymentError, fmt.Sprintf("unknown payment provider: %s", cfg.Provider))
	}
}

// cacheKey fingerprints the fields that change an adapter's identity.
// Credentials are hashed so the key never carries secrets.
func cacheKey(cfg config.Config) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|", cfg.Provider, cfg.Environment)
	switch cfg.Provider {
	case asaas.ProviderName:
		fmt.Fprintf(h, "%s|%s|%d", cfg.Asaas.APIKey, cfg.Asaas.APIURL, cfg.Asaas.ClientTimeout/time.Millisecond)
	case stripegw.ProviderName:
		fmt.Fprintf(h, "%s", cfg.Stripe.APIKey)
	}
	return cfg.Provider + ":" + hex.EncodeToString(h.Sum(nil))
}

var defaultFactory = New()

// CreatePaymentProvider resolves a provider through the shared
// process-wide factory.
func CreatePaymentProvider(cfg config.Config) (payment.Provider, error) {
	return defaultFactory.Create(cfg)
}

// ResetProviderCache clears the shared factory cache.
func ResetProviderCache() {
	defaultFactory.ResetCache()
}
