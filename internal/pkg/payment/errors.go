package payment

import (
	"errors"
	"fmt"
)

// Error codes exposed to the surrounding application. The caller contract
// is provider-agnostic: raw gateway error bodies are logged, never
// propagated verbatim.
const (
	CodePaymentError        = "PAYMENT_ERROR"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	CodeRateLimited         = "RATE_LIMITED"
	CodeValidation          = "VALIDATION_ERROR"
)

// Error is the base type for recoverable business failures. It is not
// retried automatically.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a business-level payment error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ProviderUnavailableError marks a transient network/5xx failure. The job
// queues retry these with backoff.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	cause := "unknown error"
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return fmt.Sprintf("payment provider %q is unavailable: %s", e.Provider, cause)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

// NotFoundError means the resource does not exist at the provider. Never
// retried.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("payment not found: %s", e.Identifier)
}

// ErrCustomGatewayProductionBlocked is the fail-closed guard against
// shipping the test gateway to production traffic.
var ErrCustomGatewayProductionBlocked = errors.New(
	"custom gateway cannot be used in production mode; set PAYMENT_ENVIRONMENT=test or use a different provider")

// ErrRateLimited is returned when a permit was denied before any network
// call was made.
var ErrRateLimited = &Error{Code: CodeRateLimited, Message: "rate limit exceeded for provider/company"}

// IsTransient reports whether an error is worth retrying with backoff.
// Only provider unavailability qualifies; business and not-found errors
// would fail identically on replay.
func IsTransient(err error) bool {
	var unavailable *ProviderUnavailableError
	return errors.As(err, &unavailable)
}

// IsNotFound reports whether err is a provider-side missing resource.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
