package webhook

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quitanza/paycore/app/models"
	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/payment/customgw"
	"github.com/quitanza/paycore/internal/pkg/security"
)

const testSecret = "whk_secret_for_tests"

type memoryEvents struct {
	stored    map[string]*models.PaymentWebhookEvent
	processed map[uint]string
	nextID    uint
}

func newMemoryEvents() *memoryEvents {
	return &memoryEvents{
		stored:    make(map[string]*models.PaymentWebhookEvent),
		processed: make(map[uint]string),
	}
}

func (m *memoryEvents) CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + "|" + event.ExternalID + "|" + event.EventType
	if existing, ok := m.stored[key]; ok {
		return false, existing, nil
	}
	m.nextID++
	event.ID = m.nextID
	m.stored[key] = event
	return true, event, nil
}

func (m *memoryEvents) MarkProcessed(id uint, processingError string) error {
	m.processed[id] = processingError
	return nil
}

type memoryAgreements struct {
	byRef map[string]*models.Agreement
}

func newMemoryAgreements(agreements ...*models.Agreement) *memoryAgreements {
	byRef := make(map[string]*models.Agreement)
	for _, a := range agreements {
		byRef[a.ExternalReference] = a
	}
	return &memoryAgreements{byRef: byRef}
}

func (m *memoryAgreements) FindByExternalReference(ref string) (*models.Agreement, error) {
	if a, ok := m.byRef[ref]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryAgreements) FindByProviderPaymentID(id string) (*models.Agreement, error) {
	for _, a := range m.byRef {
		if a.ProviderPaymentID == id {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryAgreements) Save(agreement *models.Agreement) error {
	m.byRef[agreement.ExternalReference] = agreement
	return nil
}

func signedDelivery(t *testing.T, eventID string, event payment.EventType, valueCents int64, externalRef string) ([]byte, string) {
	t.Helper()
	body := []byte(fmt.Sprintf(
		`{"id":%q,"event":%q,"payment":{"id":"test_pay_1","customer":"test_cus_1","valueCents":%d,"status":"pending","externalReference":%q}}`,
		eventID, event, valueCents, externalRef))
	return body, security.SignHMAC(body, testSecret)
}

func newTestProcessor(t *testing.T, agreements AgreementRepository) (*Processor, *memoryEvents) {
	t.Helper()
	gw, err := customgw.New(config.EnvironmentTest)
	require.NoError(t, err)
	events := newMemoryEvents()
	return NewProcessor(gw, events, agreements, testSecret), events
}

func TestProcessRejectsBadSignature(t *testing.T) {
	proc, events := newTestProcessor(t, newMemoryAgreements())

	body, _ := signedDelivery(t, "evt_1", payment.EventPaymentConfirmed, 10000, "agr_1")
	_, err := proc.Process(body, "deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, events.stored, "rejected deliveries must not be stored")
}

func TestProcessConfirmedUpdatesAgreement(t *testing.T) {
	agreement := &models.Agreement{ID: 1, ExternalReference: "agr_1", PaymentStatus: "pending"}
	proc, events := newTestProcessor(t, newMemoryAgreements(agreement))

	body, sig := signedDelivery(t, "evt_1", payment.EventPaymentConfirmed, 10000, "agr_1")
	result, err := proc.Process(body, sig)
	require.NoError(t, err)

	assert.True(t, result.Handled)
	assert.False(t, result.Duplicate)
	require.NotNil(t, result.Update)
	assert.Equal(t, payment.StatusConfirmed, result.Update.Status)

	assert.Equal(t, "confirmed", agreement.PaymentStatus)
	assert.Equal(t, "test_pay_1", agreement.ProviderPaymentID)
	assert.Nil(t, agreement.PaidAt)
	assert.Len(t, events.processed, 1)
}

func TestProcessReceivedMarksAgreementPaid(t *testing.T) {
	agreement := &models.Agreement{ID: 1, ExternalReference: "agr_1", PaymentStatus: "confirmed"}
	proc, _ := newTestProcessor(t, newMemoryAgreements(agreement))

	body, sig := signedDelivery(t, "evt_2", payment.EventPaymentReceived, 10000, "agr_1")
	result, err := proc.Process(body, sig)
	require.NoError(t, err)

	require.NotNil(t, result.Update)
	assert.True(t, result.Update.MarkPaid)
	assert.Equal(t, "received", agreement.PaymentStatus)
	assert.Equal(t, int64(10000), agreement.PaidAmountCents)
	require.NotNil(t, agreement.PaidAt)
	assert.WithinDuration(t, time.Now(), *agreement.PaidAt, time.Minute)
}

func TestProcessRefundCancelsAgreement(t *testing.T) {
	agreement := &models.Agreement{ID: 1, ExternalReference: "agr_1", PaymentStatus: "received"}
	proc, _ := newTestProcessor(t, newMemoryAgreements(agreement))

	body, sig := signedDelivery(t, "evt_3", payment.EventPaymentRefunded, 10000, "agr_1")
	_, err := proc.Process(body, sig)
	require.NoError(t, err)

	assert.Equal(t, "refunded", agreement.PaymentStatus)
	require.NotNil(t, agreement.CancelledAt)
}

func TestProcessIsIdempotentOnReplay(t *testing.T) {
	agreement := &models.Agreement{ID: 1, ExternalReference: "agr_1", PaymentStatus: "pending"}
	proc, _ := newTestProcessor(t, newMemoryAgreements(agreement))

	body, sig := signedDelivery(t, "evt_1", payment.EventPaymentReceived, 10000, "agr_1")

	first, err := proc.Process(body, sig)
	require.NoError(t, err)
	require.NotNil(t, first.Update)
	paidAt := *agreement.PaidAt

	second, err := proc.Process(body, sig)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Nil(t, second.Update)
	assert.Equal(t, paidAt, *agreement.PaidAt, "replay must not touch the agreement")
}

func TestProcessUnknownEventIsRecordedButNotApplied(t *testing.T) {
	agreement := &models.Agreement{ID: 1, ExternalReference: "agr_1", PaymentStatus: "pending"}
	proc, events := newTestProcessor(t, newMemoryAgreements(agreement))

	body, sig := signedDelivery(t, "evt_9", payment.EventType("PAYMENT_SOMETHING_NEW"), 10000, "agr_1")
	result, err := proc.Process(body, sig)
	require.NoError(t, err)

	assert.True(t, result.Handled)
	assert.Nil(t, result.Update)
	assert.Equal(t, "pending", agreement.PaymentStatus)
	assert.Len(t, events.stored, 1)
}

func TestProcessUnknownAgreementIsHandled(t *testing.T) {
	proc, events := newTestProcessor(t, newMemoryAgreements())

	body, sig := signedDelivery(t, "evt_1", payment.EventPaymentConfirmed, 10000, "agr_missing")
	result, err := proc.Process(body, sig)
	require.NoError(t, err)

	assert.True(t, result.Handled)
	assert.Equal(t, "agreement not found", result.Reason)
	assert.Len(t, events.stored, 1)
}

func TestDeriveUpdateTable(t *testing.T) {
	now := time.Now()
	tests := []struct {
		event      payment.EventType
		wantStatus payment.Status
		wantPaid   bool
		wantCancel bool
	}{
		{payment.EventPaymentCreated, payment.StatusPending, false, false},
		{payment.EventPaymentConfirmed, payment.StatusConfirmed, false, false},
		{payment.EventPaymentReceived, payment.StatusReceived, true, false},
		{payment.EventPaymentOverdue, payment.StatusOverdue, false, false},
		{payment.EventPaymentRefunded, payment.StatusRefunded, false, true},
		{payment.EventPaymentDeleted, payment.StatusCancelled, false, true},
	}
	for _, tt := range tests {
		update, known := DeriveUpdate(payment.WebhookPayload{Event: tt.event}, now)
		require.True(t, known, "event %s", tt.event)
		assert.Equal(t, tt.wantStatus, update.Status)
		assert.Equal(t, tt.wantPaid, update.MarkPaid)
		assert.Equal(t, tt.wantCancel, update.Cancelled)
	}
}
