package jobqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/payment/customgw"
	"github.com/quitanza/paycore/internal/pkg/webhook"
)

func testService(t *testing.T) *payment.Service {
	t.Helper()
	gw, err := customgw.New(config.EnvironmentTest)
	require.NoError(t, err)
	return payment.NewService(gw, nil, nil)
}

func TestPaymentHandlerCreateCustomer(t *testing.T) {
	handler := NewPaymentOperationHandler(testService(t))

	job := &Job{
		ID:   "job-1",
		Type: JobTypePaymentOperation,
		Payload: PaymentJobPayload{
			Operation: "createCustomer",
			Params: map[string]interface{}{
				"name":    "Jo Silva",
				"cpfCnpj": "12345678901",
			},
			CompanyID: "company-1",
		}.ToMap(),
	}

	assert.NoError(t, handler(context.Background(), job))
}

func TestPaymentHandlerUnknownOperationIsPermanent(t *testing.T) {
	handler := NewPaymentOperationHandler(testService(t))

	job := &Job{
		ID:   "job-1",
		Type: JobTypePaymentOperation,
		Payload: PaymentJobPayload{
			Operation: "chargeTheMoon",
			CompanyID: "company-1",
		}.ToMap(),
	}

	err := handler(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermanent))
}

func TestPaymentHandlerValidationFailureIsPermanent(t *testing.T) {
	handler := NewPaymentOperationHandler(testService(t))

	// Missing dueDate and customer, validation fails before the gateway.
	job := &Job{
		ID:   "job-1",
		Type: JobTypePaymentOperation,
		Payload: PaymentJobPayload{
			Operation: "createPayment",
			Params:    map[string]interface{}{"valueCents": float64(1000)},
			CompanyID: "company-1",
		}.ToMap(),
	}

	err := handler(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermanent))
}

func TestWebhookHandlerInvalidSignatureIsPermanent(t *testing.T) {
	gw, err := customgw.New(config.EnvironmentTest)
	require.NoError(t, err)
	proc := webhook.NewProcessor(gw, nil, nil, "whk_secret")
	handler := NewWebhookDeliveryHandler(proc)

	job := &Job{
		ID:   "job-1",
		Type: JobTypeWebhookDelivery,
		Payload: WebhookJobPayload{
			Provider:  "custom",
			RawBody:   `{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_1"}}`,
			Signature: "deadbeef",
		}.ToMap(),
	}

	err = handler(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermanent))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	transient := &payment.ProviderUnavailableError{Provider: "asaas", Err: errors.New("502")}
	assert.False(t, errors.Is(classify(transient), ErrPermanent))

	assert.False(t, errors.Is(classify(payment.ErrRateLimited), ErrPermanent))

	business := payment.NewError(payment.CodePaymentError, "invalid_billing_type")
	assert.True(t, errors.Is(classify(business), ErrPermanent))

	notFound := &payment.NotFoundError{Identifier: "pay_404"}
	assert.True(t, errors.Is(classify(notFound), ErrPermanent))
}
