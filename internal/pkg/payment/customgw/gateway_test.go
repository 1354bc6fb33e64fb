package customgw

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/security"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := New(config.EnvironmentTest)
	require.NoError(t, err)
	return g
}

func TestProductionIsBlocked(t *testing.T) {
	_, err := New(config.EnvironmentProduction)
	assert.True(t, errors.Is(err, payment.ErrCustomGatewayProductionBlocked))
}

func TestCustomerDedupByDocument(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	first, err := g.CreateCustomer(ctx, payment.CreateCustomerParams{Name: "Maria", Document: "12345678901"})
	require.NoError(t, err)
	second, err := g.CreateCustomer(ctx, payment.CreateCustomerParams{Name: "Maria Again", Document: "12345678901"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same document must return the existing customer")
	assert.Equal(t, "Maria", second.Name)
}

func TestCreatePaymentArtifacts(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	tests := []struct {
		billingType payment.BillingType
		wantBoleto  bool
		wantPix     bool
	}{
		{payment.BillingTypeBoleto, true, false},
		{payment.BillingTypePix, false, true},
		{payment.BillingTypeCreditCard, false, false},
		{payment.BillingTypeUndefined, true, true},
	}

	for _, tt := range tests {
		p, err := g.CreatePayment(ctx, payment.CreatePaymentParams{
			Customer:    "test_cus_1",
			BillingType: tt.billingType,
			ValueCents:  10000,
			DueDate:     "2026-09-30",
		})
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, p.Status)
		assert.NotEmpty(t, p.PaymentURL)
		assert.Equal(t, tt.wantBoleto, p.BoletoURL != "", "billing type %s", tt.billingType)
		assert.Equal(t, tt.wantPix, p.PixQrCodeURL != "", "billing type %s", tt.billingType)
	}
}

func TestGetPaymentByExternalReference(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	created, err := g.CreatePayment(ctx, payment.CreatePaymentParams{
		Customer:          "test_cus_1",
		BillingType:       payment.BillingTypePix,
		ValueCents:        5000,
		DueDate:           "2026-09-30",
		ExternalReference: "agr_42",
	})
	require.NoError(t, err)

	found, err := g.GetPaymentByExternalReference(ctx, "agr_42")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := g.GetPaymentByExternalReference(ctx, "agr_none")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRefundAndCancel(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	p, err := g.CreatePayment(ctx, payment.CreatePaymentParams{
		Customer:    "test_cus_1",
		BillingType: payment.BillingTypeCreditCard,
		ValueCents:  10000,
		DueDate:     "2026-09-30",
	})
	require.NoError(t, err)

	refunded, err := g.RefundPayment(ctx, payment.RefundParams{PaymentID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, refunded.Status)

	_, err = g.RefundPayment(ctx, payment.RefundParams{PaymentID: "test_pay_missing"})
	assert.True(t, payment.IsNotFound(err))

	assert.True(t, payment.IsNotFound(g.CancelPayment(ctx, "test_pay_missing")))
}

func TestParseAndVerifyWebhook(t *testing.T) {
	g := newTestGateway(t)
	secret := "whsec_test"

	body, _ := json.Marshal(map[string]interface{}{
		"id":    "evt_1",
		"event": "PAYMENT_CONFIRMED",
		"payment": map[string]interface{}{
			"id":                "test_pay_1",
			"customer":          "test_cus_1",
			"valueCents":        10000,
			"status":            "confirmed",
			"externalReference": "agr_42",
		},
	})
	sig := security.SignHMAC(body, secret)

	assert.True(t, g.VerifyWebhook(body, sig, secret))
	assert.False(t, g.VerifyWebhook(body, sig, "other-secret"))

	payload, err := g.ParseWebhook(body)
	require.NoError(t, err)
	assert.Equal(t, payment.EventPaymentConfirmed, payload.Event)
	assert.Equal(t, int64(10000), payload.Payment.ValueCents)
}
