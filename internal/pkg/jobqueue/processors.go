package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/quitanza/paycore/internal/pkg/payment"
	"github.com/quitanza/paycore/internal/pkg/webhook"
)

// NewPaymentOperationHandler builds the handler for asynchronous payment
// operations. Provider outages come back as retryable errors; business
// failures are parked immediately.
func NewPaymentOperationHandler(svc *payment.Service) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := PaymentJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("%w: invalid payment job payload: %v", ErrPermanent, err)
		}

		switch payload.Operation {
		case "createCustomer":
			params, err := decodeParams[payment.CreateCustomerParams](payload.Params)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPermanent, err)
			}
			_, err = svc.CreateCustomer(ctx, params, payload.CompanyID)
			return classify(err)
		case "createPayment":
			params, err := decodeParams[payment.CreatePaymentParams](payload.Params)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPermanent, err)
			}
			_, err = svc.CreatePayment(ctx, params, payload.CompanyID)
			return classify(err)
		case "refundPayment":
			params, err := decodeParams[payment.RefundParams](payload.Params)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPermanent, err)
			}
			_, err = svc.RefundPayment(ctx, params, payload.CompanyID)
			return classify(err)
		case "cancelPayment":
			paymentID, _ := payload.Params["paymentId"].(string)
			if paymentID == "" {
				return fmt.Errorf("%w: cancelPayment requires paymentId", ErrPermanent)
			}
			return classify(svc.CancelPayment(ctx, paymentID, payload.CompanyID))
		default:
			return fmt.Errorf("%w: unknown payment operation: %s", ErrPermanent, payload.Operation)
		}
	}
}

// NewWebhookDeliveryHandler builds the handler that drains the webhook
// queue through the processor. Invalid signatures never retry.
func NewWebhookDeliveryHandler(proc *webhook.Processor) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := WebhookJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("%w: invalid webhook job payload: %v", ErrPermanent, err)
		}

		result, err := proc.Process([]byte(payload.RawBody), payload.Signature)
		if err != nil {
			if errors.Is(err, webhook.ErrInvalidSignature) {
				return fmt.Errorf("%w: %v", ErrPermanent, err)
			}
			return err
		}

		if result.Duplicate {
			log.Debugf("[JobQueue:%s] Duplicate webhook delivery skipped (job %s)", WebhookQueueName, job.ID)
		}
		return nil
	}
}

// classify keeps transient provider failures retryable and parks
// everything else. Rate limit denials retry so the permit can free up.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if payment.IsTransient(err) || errors.Is(err, payment.ErrRateLimited) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPermanent, err)
}

func decodeParams[T any](params map[string]interface{}) (T, error) {
	var out T
	raw, err := json.Marshal(params)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
