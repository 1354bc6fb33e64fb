package customgw

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quitanza/paycore/internal/pkg/config"
	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/security"
)

// ProviderName identifies the non-production test gateway.
const ProviderName = "custom"

// Gateway is a payment.Provider backed by the in-memory simulator. It can
// never run in production; the constructor fails closed.
type Gateway struct {
	simulator *Simulator
}

// New creates the custom gateway. environment == production is a fatal
// misconfiguration, not a fallback.
func New(environment config.Environment) (*Gateway, error) {
	if environment == config.EnvironmentProduction {
		return nil, payment.ErrCustomGatewayProductionBlocked
	}
	return &Gateway{simulator: NewSimulator()}, nil
}

func (g *Gateway) Name() string { return ProviderName }

// Simulator exposes the underlying simulator for test-mode simulation
// endpoints and integration tests.
func (g *Gateway) Simulator() *Simulator {
	return g.simulator
}

func (g *Gateway) CreateCustomer(_ context.Context, params payment.CreateCustomerParams) (payment.Customer, error) {
	c := g.simulator.CreateCustomer(params)
	return mapCustomer(c), nil
}

func (g *Gateway) GetCustomerByDocument(_ context.Context, document string) (*payment.Customer, error) {
	c := g.simulator.GetCustomerByDocument(document)
	if c == nil {
		return nil, nil
	}
	mapped := mapCustomer(c)
	return &mapped, nil
}

func (g *Gateway) CreatePayment(_ context.Context, params payment.CreatePaymentParams) (payment.Payment, error) {
	return mapPayment(g.simulator.CreatePayment(params)), nil
}

func (g *Gateway) GetPayment(_ context.Context, paymentID string) (payment.Payment, error) {
	p := g.simulator.GetPayment(paymentID)
	if p == nil {
		return payment.Payment{}, &payment.NotFoundError{Identifier: paymentID}
	}
	return mapPayment(p), nil
}

func (g *Gateway) GetPaymentByExternalReference(_ context.Context, ref string) (*payment.Payment, error) {
	p := g.simulator.GetPaymentByExternalReference(ref)
	if p == nil {
		return nil, nil
	}
	mapped := mapPayment(p)
	return &mapped, nil
}

func (g *Gateway) RefundPayment(_ context.Context, params payment.RefundParams) (payment.Payment, error) {
	p := g.simulator.SimulateRefund(params.PaymentID)
	if p == nil {
		return payment.Payment{}, &payment.NotFoundError{Identifier: params.PaymentID}
	}
	return mapPayment(p), nil
}

func (g *Gateway) CancelPayment(_ context.Context, paymentID string) error {
	if !g.simulator.CancelPayment(paymentID) {
		return &payment.NotFoundError{Identifier: paymentID}
	}
	return nil
}

// webhookEnvelope matches the deliveries the simulator emits: the internal
// event vocabulary, cent amounts, no translation layer.
type webhookEnvelope struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payment struct {
		ID                string `json:"id"`
		Customer          string `json:"customer"`
		ValueCents        int64  `json:"valueCents"`
		Status            string `json:"status"`
		ExternalReference string `json:"externalReference"`
		Description       string `json:"description"`
	} `json:"payment"`
}

func (g *Gateway) ParseWebhook(rawBody []byte) (payment.WebhookPayload, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return payment.WebhookPayload{}, fmt.Errorf("invalid custom gateway webhook payload: %w", err)
	}
	if envelope.Payment.ID == "" {
		return payment.WebhookPayload{}, fmt.Errorf("invalid custom gateway webhook payload: missing payment.id")
	}

	return payment.WebhookPayload{
		Event:   payment.EventType(envelope.Event),
		EventID: envelope.ID,
		Payment: payment.WebhookPayment{
			ID:                envelope.Payment.ID,
			Customer:          envelope.Payment.Customer,
			ValueCents:        envelope.Payment.ValueCents,
			Status:            envelope.Payment.Status,
			ExternalReference: envelope.Payment.ExternalReference,
			Description:       envelope.Payment.Description,
		},
	}, nil
}

// VerifyWebhook checks the HMAC-SHA256 signature the simulator attaches to
// its deliveries.
func (g *Gateway) VerifyWebhook(rawBody []byte, signature string, secret string) bool {
	return security.VerifyHMACSignature(rawBody, signature, secret)
}

func mapCustomer(c *SimulatedCustomer) payment.Customer {
	return payment.Customer{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		MobilePhone: c.MobilePhone,
		Document:    c.Document,
	}
}

func mapPayment(p *SimulatedPayment) payment.Payment {
	return payment.Payment{
		ID:                    p.ID,
		CustomerID:            p.CustomerID,
		BillingType:           p.BillingType,
		ValueCents:            p.ValueCents,
		DueDate:               p.DueDate,
		Description:           p.Description,
		ExternalReference:     p.ExternalReference,
		InstallmentCount:      p.InstallmentCount,
		InstallmentValueCents: p.InstallmentValueCents,
		Status:                p.Status,
		PaymentURL:            p.PaymentURL,
		BoletoURL:             p.BoletoURL,
		PixQrCodeURL:          p.PixQrCodeURL,
	}
}
