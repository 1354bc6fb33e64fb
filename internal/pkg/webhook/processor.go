package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/quitanza/paycore/app/models"
	"github.com/quitanza/paycore/internal/pkg/payment"
)

// ErrInvalidSignature is returned before anything is stored when a
// delivery fails verification.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// AgreementUpdate is the state change a webhook event implies for the
// agreement it belongs to.
type AgreementUpdate struct {
	Status          payment.Status
	MarkPaid        bool
	PaidAmountCents int64
	PaidAt          *time.Time
	Cancelled       bool
}

// Result reports what happened to one delivery.
type Result struct {
	Handled   bool
	Duplicate bool
	Update    *AgreementUpdate
	Reason    string
}

// Processor turns raw provider deliveries into agreement updates:
// verify, persist exactly once, derive, apply.
type Processor struct {
	provider   payment.Provider
	events     EventRepository
	agreements AgreementRepository
	secret     string
	now        func() time.Time
}

// NewProcessor wires a processor for one provider adapter. secret is the
// shared verification secret (webhook token or signing secret, depending
// on the provider).
func NewProcessor(provider payment.Provider, events EventRepository, agreements AgreementRepository, secret string) *Processor {
	return &Processor{
		provider:   provider,
		events:     events,
		agreements: agreements,
		secret:     secret,
		now:        time.Now,
	}
}

// Process handles one webhook delivery end to end. Replays of an already
// stored event return Duplicate without touching the agreement again.
func (p *Processor) Process(rawBody []byte, signature string) (Result, error) {
	if !p.provider.VerifyWebhook(rawBody, signature, p.secret) {
		log.Warnf("[Webhook] Rejected delivery for %s: invalid signature", p.provider.Name())
		return Result{}, ErrInvalidSignature
	}

	payload, err := p.provider.ParseWebhook(rawBody)
	if err != nil {
		return Result{}, fmt.Errorf("parse webhook: %w", err)
	}

	event := &models.PaymentWebhookEvent{
		Provider:       p.provider.Name(),
		ExternalID:     externalID(payload, rawBody),
		EventType:      string(payload.Event),
		PayloadJSON:    string(rawBody),
		SignatureValid: true,
	}
	created, stored, err := p.events.CreateIfNotExists(event)
	if err != nil {
		return Result{}, fmt.Errorf("store webhook event: %w", err)
	}
	if !created {
		log.Infof("[Webhook] Duplicate delivery %s/%s ignored", event.Provider, event.ExternalID)
		return Result{Handled: true, Duplicate: true}, nil
	}

	update, known := DeriveUpdate(payload, p.now())
	if !known {
		p.markProcessed(stored.ID, "")
		return Result{Handled: true, Reason: "unmapped event type"}, nil
	}

	if err := p.applyUpdate(payload.Payment, update); err != nil {
		p.markProcessed(stored.ID, err.Error())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{Handled: true, Update: update, Reason: "agreement not found"}, nil
		}
		return Result{}, err
	}

	p.markProcessed(stored.ID, "")
	return Result{Handled: true, Update: update}, nil
}

// DeriveUpdate maps a normalized event to the agreement change it
// implies. The second return is false for event types outside the known
// vocabulary.
func DeriveUpdate(payload payment.WebhookPayload, now time.Time) (*AgreementUpdate, bool) {
	switch payload.Event {
	case payment.EventPaymentCreated:
		return &AgreementUpdate{Status: payment.StatusPending}, true
	case payment.EventPaymentConfirmed:
		return &AgreementUpdate{Status: payment.StatusConfirmed}, true
	case payment.EventPaymentReceived:
		paidAt := now
		return &AgreementUpdate{
			Status:          payment.StatusReceived,
			MarkPaid:        true,
			PaidAmountCents: payload.Payment.ValueCents,
			PaidAt:          &paidAt,
		}, true
	case payment.EventPaymentOverdue:
		return &AgreementUpdate{Status: payment.StatusOverdue}, true
	case payment.EventPaymentRefunded:
		return &AgreementUpdate{Status: payment.StatusRefunded, Cancelled: true}, true
	case payment.EventPaymentDeleted:
		return &AgreementUpdate{Status: payment.StatusCancelled, Cancelled: true}, true
	default:
		return nil, false
	}
}

func (p *Processor) applyUpdate(wp payment.WebhookPayment, update *AgreementUpdate) error {
	agreement, err := p.findAgreement(wp)
	if err != nil {
		return err
	}

	agreement.PaymentStatus = string(update.Status)
	if agreement.ProviderPaymentID == "" {
		agreement.ProviderPaymentID = wp.ID
	}
	if update.MarkPaid {
		agreement.PaidAmountCents = update.PaidAmountCents
		agreement.PaidAt = update.PaidAt
	}
	if update.Cancelled && agreement.CancelledAt == nil {
		cancelledAt := p.now()
		agreement.CancelledAt = &cancelledAt
	}

	return p.agreements.Save(agreement)
}

func (p *Processor) findAgreement(wp payment.WebhookPayment) (*models.Agreement, error) {
	if wp.ExternalReference != "" {
		agreement, err := p.agreements.FindByExternalReference(wp.ExternalReference)
		if err == nil {
			return agreement, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if wp.ID != "" {
		return p.agreements.FindByProviderPaymentID(wp.ID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (p *Processor) markProcessed(eventID uint, processingError string) {
	if err := p.events.MarkProcessed(eventID, processingError); err != nil {
		log.Errorf("[Webhook] Failed to mark event %d processed: %v", eventID, err)
	}
}

// externalID prefers the provider's own event id; deliveries without one
// fall back to a payload hash so replays still collide on the unique
// index.
func externalID(payload payment.WebhookPayload, rawBody []byte) string {
	if payload.EventID != "" {
		return payload.EventID
	}
	if payload.Payment.ID != "" {
		return payload.Payment.ID
	}
	sum := sha256.Sum256(rawBody)
	return "hash:" + hex.EncodeToString(sum[:])
}
