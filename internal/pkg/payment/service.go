package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"

	"github.com/quitanza/paycore/app/models"
	"github.com/quitanza/paycore/internal/pkg/ratelimit"
	"github.com/quitanza/paycore/internal/pkg/security"
	"github.com/quitanza/paycore/internal/pkg/txlog"
)

// Service wraps a provider adapter with the cross-cutting concerns every
// operation needs: a rate limit permit before any network call, request
// validation, and a sanitized transaction log row per call regardless of
// outcome.
type Service struct {
	provider Provider
	logs     txlog.Repository
	limiter  ratelimit.Limiter
	validate *validator.Validate
}

// NewService creates the payment orchestrator. logs may be nil in
// contexts without a database; operations then skip audit rows.
func NewService(provider Provider, logs txlog.Repository, limiter ratelimit.Limiter) *Service {
	return &Service{
		provider: provider,
		logs:     logs,
		limiter:  limiter,
		validate: validator.New(),
	}
}

// Provider exposes the wrapped adapter, mainly for webhook wiring.
func (s *Service) Provider() Provider {
	return s.provider
}

func (s *Service) CreateCustomer(ctx context.Context, params CreateCustomerParams, companyID string) (Customer, error) {
	if err := s.permit(companyID); err != nil {
		return Customer{}, err
	}
	if err := s.validate.Struct(params); err != nil {
		return Customer{}, &Error{Code: CodeValidation, Message: "invalid customer params", Err: err}
	}

	start := time.Now()
	customer, err := s.provider.CreateCustomer(ctx, params)
	s.record("createCustomer", companyID, params, customer, err, time.Since(start))
	if err != nil {
		return Customer{}, normalizeError(err)
	}
	return customer, nil
}

func (s *Service) GetCustomerByDocument(ctx context.Context, document string, companyID string) (*Customer, error) {
	if err := s.permit(companyID); err != nil {
		return nil, err
	}

	start := time.Now()
	customer, err := s.provider.GetCustomerByDocument(ctx, document)
	s.record("getCustomerByDocument", companyID, map[string]interface{}{"cpfCnpj": document}, customer, err, time.Since(start))
	return customer, normalizeError(err)
}

func (s *Service) CreatePayment(ctx context.Context, params CreatePaymentParams, companyID string) (Payment, error) {
	if err := s.permit(companyID); err != nil {
		return Payment{}, err
	}
	if err := s.validate.Struct(params); err != nil {
		return Payment{}, &Error{Code: CodeValidation, Message: "invalid payment params", Err: err}
	}

	start := time.Now()
	p, err := s.provider.CreatePayment(ctx, params)
	s.record("createPayment", companyID, params, p, err, time.Since(start))
	if err != nil {
		return Payment{}, normalizeError(err)
	}
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, paymentID string, companyID string) (Payment, error) {
	if err := s.permit(companyID); err != nil {
		return Payment{}, err
	}

	start := time.Now()
	p, err := s.provider.GetPayment(ctx, paymentID)
	s.record("getPayment", companyID, map[string]interface{}{"paymentId": paymentID}, p, err, time.Since(start))
	if err != nil {
		return Payment{}, normalizeError(err)
	}
	return p, nil
}

func (s *Service) GetPaymentByExternalReference(ctx context.Context, externalReference string, companyID string) (*Payment, error) {
	if err := s.permit(companyID); err != nil {
		return nil, err
	}

	start := time.Now()
	p, err := s.provider.GetPaymentByExternalReference(ctx, externalReference)
	s.record("getPaymentByExternalReference", companyID, map[string]interface{}{"externalReference": externalReference}, p, err, time.Since(start))
	return p, normalizeError(err)
}

func (s *Service) RefundPayment(ctx context.Context, params RefundParams, companyID string) (Payment, error) {
	if err := s.permit(companyID); err != nil {
		return Payment{}, err
	}
	if err := s.validate.Struct(params); err != nil {
		return Payment{}, &Error{Code: CodeValidation, Message: "invalid refund params", Err: err}
	}

	start := time.Now()
	p, err := s.provider.RefundPayment(ctx, params)
	s.record("refundPayment", companyID, params, p, err, time.Since(start))
	if err != nil {
		return Payment{}, normalizeError(err)
	}
	return p, nil
}

func (s *Service) CancelPayment(ctx context.Context, paymentID string, companyID string) error {
	if err := s.permit(companyID); err != nil {
		return err
	}

	start := time.Now()
	err := s.provider.CancelPayment(ctx, paymentID)
	s.record("cancelPayment", companyID, map[string]interface{}{"paymentId": paymentID}, nil, err, time.Since(start))
	return normalizeError(err)
}

// permit consumes one rate limit slot for this provider/company pair.
// Denied permits never reach the network.
func (s *Service) permit(companyID string) error {
	if s.limiter == nil {
		return nil
	}
	if !s.limiter.Allow(ratelimit.Key(s.provider.Name(), companyID)) {
		return ErrRateLimited
	}
	return nil
}

// record writes one audit row for the operation. Logging failures are
// reported but never break the payment flow.
func (s *Service) record(operation, companyID string, request interface{}, response interface{}, opErr error, duration time.Duration) {
	if s.logs == nil {
		return
	}

	// Sub-millisecond calls still count as one.
	durationMs := duration.Milliseconds()
	if durationMs < 1 {
		durationMs = 1
	}

	entry := &models.TransactionLog{
		Provider:    s.provider.Name(),
		Operation:   operation,
		RequestData: sanitizedJSON(request),
		CompanyID:   companyID,
		DurationMs:  durationMs,
	}
	if opErr != nil {
		msg := opErr.Error()
		entry.ErrorMessage = &msg
	} else {
		resp := sanitizedJSON(response)
		entry.ResponseData = &resp
	}

	if err := s.logs.Log(entry); err != nil {
		log.Errorf("[PaymentService] Failed to write transaction log for %s: %v", operation, err)
	}
}

// normalizeError maps unrecognized adapter failures onto the error
// taxonomy. Errors that already carry a code, transience marker or
// not-found marker pass through unchanged; anything else (malformed
// response bodies, parse failures) is wrapped so raw provider errors
// never cross the service boundary. The raw cause stays reachable via
// Unwrap and is recorded verbatim in the transaction log.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if IsTransient(err) || IsNotFound(err) {
		return err
	}
	return &Error{Code: CodePaymentError, Message: "unexpected payment provider error", Err: err}
}

// sanitizedJSON renders v as JSON with sensitive fields masked. The
// round trip through a generic map lets the mask rules apply regardless
// of the concrete request/response type.
func sanitizedJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		// Non-object payloads (nil pointers, lists) go through as-is.
		return string(raw)
	}

	masked, err := json.Marshal(security.SanitizeForLog(generic))
	if err != nil {
		return "{}"
	}
	return string(masked)
}
