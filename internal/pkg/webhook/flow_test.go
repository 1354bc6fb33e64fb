package webhook

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitanza/paycore/app/models"
	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/payment/customgw"
	"github.com/quitanza/paycore/internal/pkg/ratelimit"
	"github.com/quitanza/paycore/internal/pkg/security"
)

type capturedLogs struct {
	entries []models.TransactionLog
}

func (c *capturedLogs) Log(entry *models.TransactionLog) error {
	c.entries = append(c.entries, *entry)
	return nil
}

func (c *capturedLogs) GetByProvider(provider string, limit int) ([]models.TransactionLog, error) {
	return c.entries, nil
}

func (c *capturedLogs) GetByCompany(companyID string, limit int) ([]models.TransactionLog, error) {
	return c.entries, nil
}

// Full charge lifecycle against the test gateway: create, audit,
// webhook confirmation, agreement update.
func TestChargeLifecycle(t *testing.T) {
	gw, err := customgw.New(config.EnvironmentTest)
	require.NoError(t, err)

	logs := &capturedLogs{}
	svc := payment.NewService(gw, logs, ratelimit.NewFixedWindowLimiter(100, time.Minute))
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, payment.CreateCustomerParams{
		Name:     "Jo Silva",
		Email:    "jo@example.com",
		Document: "12345678901",
	}, "company-1")
	require.NoError(t, err)

	created, err := svc.CreatePayment(ctx, payment.CreatePaymentParams{
		Customer:          customer.ID,
		BillingType:       payment.BillingTypeBoleto,
		ValueCents:        10000,
		DueDate:           "2026-09-30",
		ExternalReference: "agr_100",
	}, "company-1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, created.Status)
	assert.NotEmpty(t, created.BoletoURL)

	// Two audit rows, one per operation, tenant attributed.
	require.Len(t, logs.entries, 2)
	assert.Equal(t, "createCustomer", logs.entries[0].Operation)
	assert.Equal(t, "createPayment", logs.entries[1].Operation)
	for _, entry := range logs.entries {
		assert.Equal(t, "company-1", entry.CompanyID)
		assert.NotContains(t, entry.RequestData, "12345678901")
		assert.Greater(t, entry.DurationMs, int64(0))
	}

	// Provider confirms the charge via webhook.
	agreement := &models.Agreement{ID: 1, ExternalReference: "agr_100", CompanyID: "company-1", PaymentStatus: "pending"}
	proc := NewProcessor(gw, newMemoryEvents(), newMemoryAgreements(agreement), testSecret)

	body := []byte(fmt.Sprintf(
		`{"id":"evt_100","event":"PAYMENT_CONFIRMED","payment":{"id":%q,"customer":%q,"valueCents":10000,"status":"confirmed","externalReference":"agr_100"}}`,
		created.ID, customer.ID))
	result, err := proc.Process(body, security.SignHMAC(body, testSecret))
	require.NoError(t, err)

	require.NotNil(t, result.Update)
	assert.Equal(t, payment.StatusConfirmed, result.Update.Status)
	assert.Equal(t, "confirmed", agreement.PaymentStatus)
	assert.Equal(t, created.ID, agreement.ProviderPaymentID)

	// Settlement arrives later.
	body = []byte(fmt.Sprintf(
		`{"id":"evt_101","event":"PAYMENT_RECEIVED","payment":{"id":%q,"customer":%q,"valueCents":10000,"status":"received","externalReference":"agr_100"}}`,
		created.ID, customer.ID))
	result, err = proc.Process(body, security.SignHMAC(body, testSecret))
	require.NoError(t, err)

	assert.Equal(t, "received", agreement.PaymentStatus)
	assert.Equal(t, int64(10000), agreement.PaidAmountCents)
	require.NotNil(t, agreement.PaidAt)
}
