package stripegw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/quitanza/paycore/internal/pkg/payment"
)

// ProviderName identifies the Stripe adapter.
const ProviderName = "stripe"

// Metadata keys used to carry contract fields Stripe has no native slot for.
const (
	metaExternalReference = "external_reference"
	metaDocument          = "cpf_cnpj"
	metaDueDate           = "due_date"
)

// Adapter maps the internal payment contract onto Stripe customers and
// payment intents. Stripe already speaks integer minor units, so amounts
// pass through untouched.
type Adapter struct {
	api *client.API
}

// New creates a Stripe adapter with its own API client; the SDK's global
// key is left alone.
func New(apiKey string) *Adapter {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Adapter{api: api}
}

func (a *Adapter) Name() string { return ProviderName }

func (a *Adapter) CreateCustomer(ctx context.Context, params payment.CreateCustomerParams) (payment.Customer, error) {
	cp := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Name:   stripe.String(params.Name),
	}
	if params.Email != "" {
		cp.Email = stripe.String(params.Email)
	}
	if params.Phone != "" {
		cp.Phone = stripe.String(params.Phone)
	}
	cp.AddMetadata(metaDocument, params.Document)

	c, err := a.api.Customers.New(cp)
	if err != nil {
		return payment.Customer{}, a.mapError(err)
	}
	return mapCustomer(c), nil
}

func (a *Adapter) GetCustomerByDocument(ctx context.Context, document string) (*payment.Customer, error) {
	sp := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Context: ctx,
			Query:   fmt.Sprintf("metadata['%s']:'%s'", metaDocument, document),
		},
	}

	iter := a.api.Customers.Search(sp)
	for iter.Next() {
		c := mapCustomer(iter.Customer())
		return &c, nil
	}
	if err := iter.Err(); err != nil {
		return nil, a.mapError(err)
	}
	return nil, nil
}

func (a *Adapter) CreatePayment(ctx context.Context, params payment.CreatePaymentParams) (payment.Payment, error) {
	pip := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(params.ValueCents),
		Currency: stripe.String(string(stripe.CurrencyBRL)),
		Customer: stripe.String(params.Customer),
	}
	if params.Description != "" {
		pip.Description = stripe.String(params.Description)
	}
	if params.ExternalReference != "" {
		pip.AddMetadata(metaExternalReference, params.ExternalReference)
	}
	pip.AddMetadata(metaDueDate, params.DueDate)

	pi, err := a.api.PaymentIntents.New(pip)
	if err != nil {
		return payment.Payment{}, a.mapError(err)
	}
	return mapPaymentIntent(pi), nil
}

func (a *Adapter) GetPayment(ctx context.Context, paymentID string) (payment.Payment, error) {
	pi, err := a.api.PaymentIntents.Get(paymentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return payment.Payment{}, a.mapError(err)
	}
	return mapPaymentIntent(pi), nil
}

func (a *Adapter) GetPaymentByExternalReference(ctx context.Context, externalReference string) (*payment.Payment, error) {
	sp := &stripe.PaymentIntentSearchParams{
		SearchParams: stripe.SearchParams{
			Context: ctx,
			Query:   fmt.Sprintf("metadata['%s']:'%s'", metaExternalReference, externalReference),
		},
	}

	iter := a.api.PaymentIntents.Search(sp)
	for iter.Next() {
		p := mapPaymentIntent(iter.PaymentIntent())
		return &p, nil
	}
	if err := iter.Err(); err != nil {
		return nil, a.mapError(err)
	}
	return nil, nil
}

func (a *Adapter) RefundPayment(ctx context.Context, params payment.RefundParams) (payment.Payment, error) {
	rp := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(params.PaymentID),
	}
	if params.ValueCents > 0 {
		rp.Amount = stripe.Int64(params.ValueCents)
	}

	if _, err := a.api.Refunds.New(rp); err != nil {
		return payment.Payment{}, a.mapError(err)
	}
	return a.GetPayment(ctx, params.PaymentID)
}

func (a *Adapter) CancelPayment(ctx context.Context, paymentID string) error {
	_, err := a.api.PaymentIntents.Cancel(paymentID, &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return a.mapError(err)
	}
	return nil
}

// stripeEvent is the slice of a Stripe event envelope this core consumes.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID          string            `json:"id"`
			Customer    string            `json:"customer"`
			Amount      int64             `json:"amount"`
			Status      string            `json:"status"`
			Description string            `json:"description"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (a *Adapter) ParseWebhook(rawBody []byte) (payment.WebhookPayload, error) {
	var event stripeEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return payment.WebhookPayload{}, fmt.Errorf("invalid stripe webhook payload: %w", err)
	}
	if event.Data.Object.ID == "" {
		return payment.WebhookPayload{}, fmt.Errorf("invalid stripe webhook payload: missing data.object.id")
	}

	return payment.WebhookPayload{
		Event:   mapEventType(event.Type),
		EventID: event.ID,
		Payment: payment.WebhookPayment{
			ID:                event.Data.Object.ID,
			Customer:          event.Data.Object.Customer,
			ValueCents:        event.Data.Object.Amount,
			Status:            string(mapIntentStatus(stripe.PaymentIntentStatus(event.Data.Object.Status))),
			ExternalReference: event.Data.Object.Metadata[metaExternalReference],
			Description:       event.Data.Object.Description,
		},
	}, nil
}

// VerifyWebhook delegates to Stripe's signed-header scheme
// (t=...,v1=... over the raw body).
func (a *Adapter) VerifyWebhook(rawBody []byte, signature string, secret string) bool {
	_, err := webhook.ConstructEvent(rawBody, signature, secret)
	return err == nil
}

// mapError folds stripe errors into the internal taxonomy. Raw gateway
// messages stay out of the returned error chain for 4xx responses.
func (a *Adapter) mapError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == 404:
			return &payment.NotFoundError{Identifier: stripeErr.RequestID}
		case stripeErr.HTTPStatusCode >= 500:
			return &payment.ProviderUnavailableError{Provider: ProviderName, Err: err}
		default:
			return payment.NewError(payment.CodePaymentError, string(stripeErr.Code))
		}
	}
	// Transport-level failure.
	return &payment.ProviderUnavailableError{Provider: ProviderName, Err: err}
}

func mapCustomer(c *stripe.Customer) payment.Customer {
	out := payment.Customer{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
	if c.Metadata != nil {
		out.Document = c.Metadata[metaDocument]
	}
	return out
}

func mapPaymentIntent(pi *stripe.PaymentIntent) payment.Payment {
	out := payment.Payment{
		ID:          pi.ID,
		BillingType: payment.BillingTypeCreditCard,
		ValueCents:  pi.Amount,
		Description: pi.Description,
		Status:      mapIntentStatus(pi.Status),
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.Metadata != nil {
		out.ExternalReference = pi.Metadata[metaExternalReference]
		out.DueDate = pi.Metadata[metaDueDate]
	}
	return out
}

func mapIntentStatus(status stripe.PaymentIntentStatus) payment.Status {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return payment.StatusConfirmed
	case stripe.PaymentIntentStatusCanceled:
		return payment.StatusCancelled
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod:
		return payment.StatusPending
	default:
		return payment.StatusPending
	}
}

func mapEventType(stripeType string) payment.EventType {
	switch stripeType {
	case "payment_intent.created":
		return payment.EventPaymentCreated
	case "payment_intent.processing":
		return payment.EventPaymentConfirmed
	case "payment_intent.succeeded":
		return payment.EventPaymentReceived
	case "payment_intent.canceled":
		return payment.EventPaymentDeleted
	case "charge.refunded":
		return payment.EventPaymentRefunded
	default:
		// Unknown types flow through untouched; the webhook processor
		// accepts them without deriving an update.
		return payment.EventType(stripeType)
	}
}
