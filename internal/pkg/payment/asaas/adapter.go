package asaas

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/security"
)

// ProviderName identifies this adapter in logs, the factory and the
// transaction repository.
const ProviderName = "asaas"

// Adapter translates the internal payment contract into Asaas v3 wire
// calls. Amounts cross the boundary as decimal strings and are converted
// with integer arithmetic only.
type Adapter struct {
	client *client
}

// New creates an Asaas adapter bound to the given credentials. No global
// environment state is read here.
func New(baseURL, apiKey string, timeout time.Duration) *Adapter {
	return &Adapter{client: newClient(baseURL, apiKey, timeout)}
}

func (a *Adapter) Name() string { return ProviderName }

// wireCustomer mirrors the Asaas customer resource.
type wireCustomer struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MobilePhone string `json:"mobilePhone,omitempty"`
	CpfCnpj     string `json:"cpfCnpj"`
	PostalCode  string `json:"postalCode,omitempty"`
	Address     string `json:"address,omitempty"`
	AddressNum  string `json:"addressNumber,omitempty"`
}

// wirePayment mirrors the Asaas payment resource. Value fields stay as
// json.Number so no float conversion ever happens.
type wirePayment struct {
	ID                string      `json:"id,omitempty"`
	Customer          string      `json:"customer"`
	BillingType       string      `json:"billingType"`
	Value             json.Number `json:"value"`
	DueDate           string      `json:"dueDate"`
	Description       string      `json:"description,omitempty"`
	ExternalReference string      `json:"externalReference,omitempty"`
	InstallmentCount  int         `json:"installmentCount,omitempty"`
	InstallmentValue  json.Number `json:"installmentValue,omitempty"`
	InvoiceURL        string      `json:"invoiceUrl,omitempty"`
	BankSlipURL       string      `json:"bankSlipUrl,omitempty"`
	ReceiptURL        string      `json:"transactionReceiptUrl,omitempty"`
	PixQrCodeURL      string      `json:"pixQrCodeUrl,omitempty"`
	Status            string      `json:"status,omitempty"`
}

type wireList[T any] struct {
	Data []T `json:"data"`
}

func (a *Adapter) CreateCustomer(ctx context.Context, params payment.CreateCustomerParams) (payment.Customer, error) {
	req := wireCustomer{
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		MobilePhone: params.MobilePhone,
		CpfCnpj:     params.Document,
		PostalCode:  params.PostalCode,
		Address:     params.Address,
		AddressNum:  params.AddressNumber,
	}

	var resp wireCustomer
	if err := a.client.post(ctx, "/customers", req, &resp); err != nil {
		return payment.Customer{}, err
	}
	return mapCustomer(resp), nil
}

func (a *Adapter) GetCustomerByDocument(ctx context.Context, document string) (*payment.Customer, error) {
	var resp wireList[wireCustomer]
	if err := a.client.get(ctx, "/customers?cpfCnpj="+queryEscape(document), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	c := mapCustomer(resp.Data[0])
	return &c, nil
}

func (a *Adapter) CreatePayment(ctx context.Context, params payment.CreatePaymentParams) (payment.Payment, error) {
	req := wirePayment{
		Customer:          params.Customer,
		BillingType:       string(params.BillingType),
		Value:             payment.CentsToDecimal(params.ValueCents),
		DueDate:           params.DueDate,
		Description:       params.Description,
		ExternalReference: params.ExternalReference,
		InstallmentCount:  params.InstallmentCount,
	}
	if params.InstallmentValueCents > 0 {
		req.InstallmentValue = payment.CentsToDecimal(params.InstallmentValueCents)
	}

	var resp wirePayment
	if err := a.client.post(ctx, "/payments", req, &resp); err != nil {
		return payment.Payment{}, err
	}
	return a.mapPayment(resp)
}

func (a *Adapter) GetPayment(ctx context.Context, paymentID string) (payment.Payment, error) {
	var resp wirePayment
	if err := a.client.get(ctx, "/payments/"+paymentID, &resp); err != nil {
		return payment.Payment{}, err
	}
	if resp.ID == "" {
		return payment.Payment{}, &payment.NotFoundError{Identifier: paymentID}
	}
	return a.mapPayment(resp)
}

func (a *Adapter) GetPaymentByExternalReference(ctx context.Context, externalReference string) (*payment.Payment, error) {
	var resp wireList[wirePayment]
	if err := a.client.get(ctx, "/payments?externalReference="+queryEscape(externalReference), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	p, err := a.mapPayment(resp.Data[0])
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Adapter) RefundPayment(ctx context.Context, params payment.RefundParams) (payment.Payment, error) {
	body := map[string]interface{}{}
	if params.ValueCents > 0 {
		body["value"] = payment.CentsToDecimal(params.ValueCents)
	}
	if params.Description != "" {
		body["description"] = params.Description
	}

	var resp wirePayment
	if err := a.client.post(ctx, "/payments/"+params.PaymentID+"/refund", body, &resp); err != nil {
		return payment.Payment{}, err
	}
	return a.mapPayment(resp)
}

func (a *Adapter) CancelPayment(ctx context.Context, paymentID string) error {
	return a.client.delete(ctx, "/payments/"+paymentID)
}

// webhookEnvelope is the raw Asaas webhook delivery.
type webhookEnvelope struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payment struct {
		ID                string      `json:"id"`
		Customer          string      `json:"customer"`
		Value             json.Number `json:"value"`
		Status            string      `json:"status"`
		ExternalReference string      `json:"externalReference"`
		Subscription      string      `json:"subscription"`
		Description       string      `json:"description"`
	} `json:"payment"`
}

func (a *Adapter) ParseWebhook(rawBody []byte) (payment.WebhookPayload, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return payment.WebhookPayload{}, fmt.Errorf("invalid asaas webhook payload: %w", err)
	}
	if envelope.Payment.ID == "" {
		return payment.WebhookPayload{}, fmt.Errorf("invalid asaas webhook payload: missing payment.id")
	}

	valueCents := int64(0)
	if envelope.Payment.Value != "" {
		cents, err := payment.DecimalToCents(envelope.Payment.Value)
		if err != nil {
			return payment.WebhookPayload{}, fmt.Errorf("invalid asaas webhook amount: %w", err)
		}
		valueCents = cents
	}

	return payment.WebhookPayload{
		Event:   mapEvent(envelope.Event),
		EventID: envelope.ID,
		Payment: payment.WebhookPayment{
			ID:                envelope.Payment.ID,
			Customer:          envelope.Payment.Customer,
			ValueCents:        valueCents,
			Status:            string(mapStatus(envelope.Payment.Status)),
			ExternalReference: envelope.Payment.ExternalReference,
			Subscription:      envelope.Payment.Subscription,
			Description:       envelope.Payment.Description,
		},
	}, nil
}

// VerifyWebhook checks the asaas-access-token header value against the
// configured webhook token.
func (a *Adapter) VerifyWebhook(_ []byte, signature string, secret string) bool {
	return security.SecureCompare(signature, secret)
}

func mapCustomer(c wireCustomer) payment.Customer {
	return payment.Customer{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		MobilePhone: c.MobilePhone,
		Document:    c.CpfCnpj,
	}
}

func (a *Adapter) mapPayment(p wirePayment) (payment.Payment, error) {
	valueCents, err := payment.DecimalToCents(p.Value)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("invalid asaas amount: %w", err)
	}

	installmentCents := int64(0)
	if p.InstallmentValue != "" {
		installmentCents, err = payment.DecimalToCents(p.InstallmentValue)
		if err != nil {
			return payment.Payment{}, fmt.Errorf("invalid asaas installment amount: %w", err)
		}
	}

	return payment.Payment{
		ID:                    p.ID,
		CustomerID:            p.Customer,
		BillingType:           payment.BillingType(p.BillingType),
		ValueCents:            valueCents,
		DueDate:               p.DueDate,
		Description:           p.Description,
		ExternalReference:     p.ExternalReference,
		InstallmentCount:      p.InstallmentCount,
		InstallmentValueCents: installmentCents,
		Status:                mapStatus(p.Status),
		PaymentURL:            p.InvoiceURL,
		BoletoURL:             p.BankSlipURL,
		PixQrCodeURL:          p.PixQrCodeURL,
		ReceiptURL:            p.ReceiptURL,
	}, nil
}
