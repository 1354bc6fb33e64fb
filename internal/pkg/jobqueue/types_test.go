package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Payment Operation", JobTypePaymentOperation, "payment_operation"},
		{"Webhook Delivery", JobTypeWebhookDelivery, "webhook_delivery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name:      "Failed job with retries remaining",
			job:       &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3},
			retryable: true,
		},
		{
			name:      "Failed job with retries exhausted",
			job:       &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3},
			retryable: false,
		},
		{
			name:      "Pending job",
			job:       &Job{Status: JobStatusPending, RetryCount: 0, MaxRetries: 3},
			retryable: false,
		},
		{
			name:      "Completed job",
			job:       &Job{Status: JobStatusCompleted, RetryCount: 0, MaxRetries: 3},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJobLifecycleMarks(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 3}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("provider timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "provider timeout", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestPaymentJobPayloadRoundTrip(t *testing.T) {
	payload := PaymentJobPayload{
		Operation: "createPayment",
		Params: map[string]interface{}{
			"customer":    "cus_1",
			"billingType": "BOLETO",
			"valueCents":  float64(10000),
			"dueDate":     "2026-09-30",
		},
		CompanyID: "company-1",
	}

	restored, err := PaymentJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload.Operation, restored.Operation)
	assert.Equal(t, payload.CompanyID, restored.CompanyID)
	assert.Equal(t, "cus_1", restored.Params["customer"])
}

func TestWebhookJobPayloadRoundTrip(t *testing.T) {
	payload := WebhookJobPayload{
		Provider:  "asaas",
		RawBody:   `{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_1"}}`,
		Signature: "abc123",
	}

	restored, err := WebhookJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestRetryDelayExponentialBackoff(t *testing.T) {
	q := NewQueue(PaymentQueueName, 1, Options{MaxRetries: 3, BackoffBase: 1000 * time.Millisecond})

	assert.Equal(t, 1*time.Second, q.RetryDelay(1))
	assert.Equal(t, 2*time.Second, q.RetryDelay(2))
	assert.Equal(t, 4*time.Second, q.RetryDelay(3))
	// Attempt numbers below 1 clamp to the base delay.
	assert.Equal(t, 1*time.Second, q.RetryDelay(0))

	webhookQ := NewQueue(WebhookQueueName, 1, Options{MaxRetries: 5, BackoffBase: 2000 * time.Millisecond})
	assert.Equal(t, 2*time.Second, webhookQ.RetryDelay(1))
	assert.Equal(t, 32*time.Second, webhookQ.RetryDelay(5))
}
