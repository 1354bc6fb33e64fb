package payment

// BillingType is the charge method requested from a gateway.
type BillingType string

const (
	BillingTypeBoleto     BillingType = "BOLETO"
	BillingTypeCreditCard BillingType = "CREDIT_CARD"
	BillingTypePix        BillingType = "PIX"
	BillingTypeUndefined  BillingType = "UNDEFINED"
)

// Status is the provider-agnostic payment status. Transitions come only
// from adapter responses or verified webhooks.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusReceived  Status = "received"
	StatusOverdue   Status = "overdue"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
	StatusDeleted   Status = "deleted"
	StatusFailed    Status = "failed"
)

// EventType is the normalized webhook event vocabulary.
type EventType string

const (
	EventPaymentCreated   EventType = "PAYMENT_CREATED"
	EventPaymentConfirmed EventType = "PAYMENT_CONFIRMED"
	EventPaymentReceived  EventType = "PAYMENT_RECEIVED"
	EventPaymentOverdue   EventType = "PAYMENT_OVERDUE"
	EventPaymentRefunded  EventType = "PAYMENT_REFUNDED"
	EventPaymentDeleted   EventType = "PAYMENT_DELETED"
)

// Customer is the external identity a provider assigns to one of our
// customers. Created on first payment operation, immutable afterwards
// except re-sync.
type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MobilePhone string `json:"mobilePhone,omitempty"`
	Document    string `json:"cpfCnpj"`
}

// Payment is a charge as the provider reports it. All amounts are integer
// minor units (cents); floats never touch money.
type Payment struct {
	ID                    string      `json:"id"`
	CustomerID            string      `json:"customerId"`
	BillingType           BillingType `json:"billingType"`
	ValueCents            int64       `json:"valueCents"`
	DueDate               string      `json:"dueDate"`
	Description           string      `json:"description,omitempty"`
	ExternalReference     string      `json:"externalReference,omitempty"`
	InstallmentCount      int         `json:"installmentCount,omitempty"`
	InstallmentValueCents int64       `json:"installmentValueCents,omitempty"`
	Status                Status      `json:"status"`
	PaymentURL            string      `json:"paymentUrl,omitempty"`
	BoletoURL             string      `json:"boletoUrl,omitempty"`
	PixQrCodeURL          string      `json:"pixQrCodeUrl,omitempty"`
	ReceiptURL            string      `json:"transactionReceiptUrl,omitempty"`
}

// CreateCustomerParams are the fields required to register a customer with
// a provider.
type CreateCustomerParams struct {
	Name          string `json:"name" validate:"required"`
	Document      string `json:"cpfCnpj" validate:"required,min=11,max=18"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	MobilePhone   string `json:"mobilePhone,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Address       string `json:"address,omitempty"`
	AddressNumber string `json:"addressNumber,omitempty"`
}

// CreatePaymentParams are the fields required to issue a charge.
type CreatePaymentParams struct {
	Customer              string      `json:"customer" validate:"required"`
	BillingType           BillingType `json:"billingType" validate:"required,oneof=BOLETO CREDIT_CARD PIX UNDEFINED"`
	ValueCents            int64       `json:"valueCents" validate:"required,gt=0"`
	DueDate               string      `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Description           string      `json:"description,omitempty"`
	ExternalReference     string      `json:"externalReference,omitempty"`
	InstallmentCount      int         `json:"installmentCount,omitempty" validate:"omitempty,gte=1"`
	InstallmentValueCents int64       `json:"installmentValueCents,omitempty" validate:"omitempty,gt=0"`
}

// RefundParams identify a payment to refund, fully when ValueCents is zero.
type RefundParams struct {
	PaymentID   string `json:"paymentId" validate:"required"`
	ValueCents  int64  `json:"valueCents,omitempty" validate:"omitempty,gt=0"`
	Description string `json:"description,omitempty"`
}

// WebhookPayload is the normalized shape a provider adapter extracts from
// a raw webhook delivery.
type WebhookPayload struct {
	Event   EventType      `json:"event"`
	EventID string         `json:"eventId,omitempty"`
	Payment WebhookPayment `json:"payment"`
}

// WebhookPayment is the payment snapshot carried inside a webhook event.
type WebhookPayment struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	ValueCents        int64  `json:"valueCents"`
	Status            string `json:"status"`
	ExternalReference string `json:"externalReference,omitempty"`
	Subscription      string `json:"subscription,omitempty"`
	Description       string `json:"description,omitempty"`
}
