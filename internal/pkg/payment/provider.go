package payment

import "context"

// Provider is the capability every gateway adapter implements. Adapters own
// wire-format translation, amount conversion and gateway auth headers; they
// never write to the transaction repository, that is the orchestrator's job.
type Provider interface {
	Name() string

	CreateCustomer(ctx context.Context, params CreateCustomerParams) (Customer, error)
	GetCustomerByDocument(ctx context.Context, document string) (*Customer, error)

	CreatePayment(ctx context.Context, params CreatePaymentParams) (Payment, error)
	GetPayment(ctx context.Context, paymentID string) (Payment, error)
	GetPaymentByExternalReference(ctx context.Context, externalReference string) (*Payment, error)
	RefundPayment(ctx context.Context, params RefundParams) (Payment, error)
	CancelPayment(ctx context.Context, paymentID string) error

	// ParseWebhook normalizes a raw webhook delivery. It must not trust the
	// payload; verification happens separately via VerifyWebhook.
	ParseWebhook(rawBody []byte) (WebhookPayload, error)

	// VerifyWebhook validates the delivery signature/token against the
	// per-provider secret. Implementations must be constant time.
	VerifyWebhook(rawBody []byte, signature string, secret string) bool
}
