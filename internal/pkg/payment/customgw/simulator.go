package customgw

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quitanza/paycore/internal/pkg/payment"
)

// SimulatedCustomer is a customer record held by the test-mode simulator.
type SimulatedCustomer struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	MobilePhone string
	Document    string
	CreatedAt   time.Time
}

// SimulatedPayment is a charge record held by the test-mode simulator.
type SimulatedPayment struct {
	ID                    string
	CustomerID            string
	BillingType           payment.BillingType
	ValueCents            int64
	DueDate               string
	Description           string
	ExternalReference     string
	InstallmentCount      int
	InstallmentValueCents int64
	Status                payment.Status
	PaymentURL            string
	BoletoURL             string
	PixQrCodeURL          string
	CreatedAt             time.Time
}

// Simulator is an in-memory stand-in for a real gateway, used in test
// environments and integration suites. Safe for concurrent use.
type Simulator struct {
	mu               sync.Mutex
	customers        map[string]*SimulatedCustomer
	customersByDoc   map[string]string
	payments         map[string]*SimulatedPayment
	paymentsByExtRef map[string]string
}

// NewSimulator creates an empty simulator.
func NewSimulator() *Simulator {
	return &Simulator{
		customers:        make(map[string]*SimulatedCustomer),
		customersByDoc:   make(map[string]string),
		payments:         make(map[string]*SimulatedPayment),
		paymentsByExtRef: make(map[string]string),
	}
}

// CreateCustomer registers a customer, returning the existing record when
// the document was seen before (mirrors real gateway dedup behavior).
func (s *Simulator) CreateCustomer(params payment.CreateCustomerParams) *SimulatedCustomer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.customersByDoc[params.Document]; ok {
		return s.customers[existingID]
	}

	customer := &SimulatedCustomer{
		ID:          "test_cus_" + uuid.New().String()[:8],
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		MobilePhone: params.MobilePhone,
		Document:    params.Document,
		CreatedAt:   time.Now(),
	}
	s.customers[customer.ID] = customer
	s.customersByDoc[params.Document] = customer.ID
	return customer
}

// GetCustomerByDocument looks up a customer by CPF/CNPJ.
func (s *Simulator) GetCustomerByDocument(document string) *SimulatedCustomer {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.customersByDoc[document]
	if !ok {
		return nil
	}
	return s.customers[id]
}

// CreatePayment registers a pending charge with billing-type specific
// artifact URLs.
func (s *Simulator) CreatePayment(params payment.CreatePaymentParams) *SimulatedPayment {
	s.mu.Lock()
	defer s.mu.Unlock()

	paymentID := "test_pay_" + uuid.New().String()[:8]
	p := &SimulatedPayment{
		ID:                    paymentID,
		CustomerID:            params.Customer,
		BillingType:           params.BillingType,
		ValueCents:            params.ValueCents,
		DueDate:               params.DueDate,
		Description:           params.Description,
		ExternalReference:     params.ExternalReference,
		InstallmentCount:      params.InstallmentCount,
		InstallmentValueCents: params.InstallmentValueCents,
		Status:                payment.StatusPending,
		PaymentURL:            "https://test-gateway.local/pay/" + paymentID,
		CreatedAt:             time.Now(),
	}

	switch params.BillingType {
	case payment.BillingTypeBoleto:
		p.BoletoURL = "https://test-gateway.local/boleto/" + paymentID
	case payment.BillingTypePix:
		p.PixQrCodeURL = "https://test-gateway.local/pix/" + paymentID
	case payment.BillingTypeUndefined:
		p.BoletoURL = "https://test-gateway.local/boleto/" + paymentID
		p.PixQrCodeURL = "https://test-gateway.local/pix/" + paymentID
	}

	s.payments[paymentID] = p
	if params.ExternalReference != "" {
		s.paymentsByExtRef[params.ExternalReference] = paymentID
	}
	return p
}

// GetPayment returns a charge by id, nil when unknown.
func (s *Simulator) GetPayment(paymentID string) *SimulatedPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[paymentID]
}

// GetPaymentByExternalReference returns a charge by external reference.
func (s *Simulator) GetPaymentByExternalReference(ref string) *SimulatedPayment {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.paymentsByExtRef[ref]
	if !ok {
		return nil
	}
	return s.payments[id]
}

// SimulateConfirmation moves a charge to confirmed, as a card capture would.
func (s *Simulator) SimulateConfirmation(paymentID string) *SimulatedPayment {
	return s.setStatus(paymentID, payment.StatusConfirmed)
}

// SimulateReceived moves a charge to received, as settlement would.
func (s *Simulator) SimulateReceived(paymentID string) *SimulatedPayment {
	return s.setStatus(paymentID, payment.StatusReceived)
}

// SimulateOverdue moves a charge to overdue.
func (s *Simulator) SimulateOverdue(paymentID string) *SimulatedPayment {
	return s.setStatus(paymentID, payment.StatusOverdue)
}

// SimulateRefund moves a charge to refunded.
func (s *Simulator) SimulateRefund(paymentID string) *SimulatedPayment {
	return s.setStatus(paymentID, payment.StatusRefunded)
}

// CancelPayment marks a charge cancelled; false when unknown.
func (s *Simulator) CancelPayment(paymentID string) bool {
	return s.setStatus(paymentID, payment.StatusCancelled) != nil
}

func (s *Simulator) setStatus(paymentID string, status payment.Status) *SimulatedPayment {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return nil
	}
	p.Status = status
	return p
}
