package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/payment"
)

func asaasConfig(apiKey string) config.Config {
	return config.Config{
		Provider:    "asaas",
		Environment: config.EnvironmentTest,
		Asaas: config.AsaasConfig{
			APIKey:        apiKey,
			APIURL:        "https://sandbox.asaas.com/api/v3",
			ClientTimeout: 15 * time.Second,
		},
	}
}

func TestCreateCachesPerCredentialSet(t *testing.T) {
	f := New()

	first, err := f.Create(asaasConfig("key-a"))
	require.NoError(t, err)
	second, err := f.Create(asaasConfig("key-a"))
	require.NoError(t, err)

	assert.Same(t, first, second, "same credentials must reuse the cached adapter")

	other, err := f.Create(asaasConfig("key-b"))
	require.NoError(t, err)
	assert.NotSame(t, first, other, "different credentials must build a new adapter")
}

func TestResetCacheDropsInstances(t *testing.T) {
	f := New()

	first, err := f.Create(asaasConfig("key-a"))
	require.NoError(t, err)

	f.ResetCache()

	second, err := f.Create(asaasConfig("key-a"))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestCustomGatewayBlockedInProduction(t *testing.T) {
	f := New()

	_, err := f.Create(config.Config{
		Provider:    "custom",
		Environment: config.EnvironmentProduction,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, payment.ErrCustomGatewayProductionBlocked))
}

func TestCustomGatewayAllowedInTest(t *testing.T) {
	f := New()

	p, err := f.Create(config.Config{
		Provider:    "custom",
		Environment: config.EnvironmentTest,
	})
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Name())
}

func TestUnknownProvider(t *testing.T) {
	f := New()

	_, err := f.Create(config.Config{Provider: "mercadopago", Environment: config.EnvironmentTest})
	require.Error(t, err)

	var perr *payment.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, payment.CodePaymentError, perr.Code)
}

func TestStripeAndCustomConfigsDoNotCollide(t *testing.T) {
	f := New()

	stripeProv, err := f.Create(config.Config{
		Provider:    "stripe",
		Environment: config.EnvironmentTest,
		Stripe:      config.StripeConfig{APIKey: "sk_test_123"},
	})
	require.NoError(t, err)
	assert.Equal(t, "stripe", stripeProv.Name())

	customProv, err := f.Create(config.Config{Provider: "custom", Environment: config.EnvironmentTest})
	require.NoError(t, err)
	assert.Equal(t, "custom", customProv.Name())
}
