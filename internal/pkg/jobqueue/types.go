package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypePaymentOperation JobType = "payment_operation"
	JobTypeWebhookDelivery  JobType = "webhook_delivery"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a durable background job
type Job struct {
	ID          string                 `json:"id"`
	Queue       string                 `json:"queue"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// PaymentJobPayload carries an asynchronous payment operation.
type PaymentJobPayload struct {
	Operation string                 `json:"operation"` // createPayment, createCustomer, refundPayment, cancelPayment
	Params    map[string]interface{} `json:"params"`
	CompanyID string                 `json:"company_id"`
}

// ToMap converts the payload to a map for storage
func (p PaymentJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"operation":  p.Operation,
		"params":     p.Params,
		"company_id": p.CompanyID,
	}
}

// PaymentJobPayloadFromMap creates a payload from a map
func PaymentJobPayloadFromMap(data map[string]interface{}) (*PaymentJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PaymentJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// WebhookJobPayload carries one raw webhook delivery for asynchronous
// processing. The body stays untouched so signature verification still
// works inside the worker.
type WebhookJobPayload struct {
	Provider  string `json:"provider"`
	RawBody   string `json:"raw_body"`
	Signature string `json:"signature"`
}

// ToMap converts the payload to a map for storage
func (p WebhookJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"provider":  p.Provider,
		"raw_body":  p.RawBody,
		"signature": p.Signature,
	}
}

// WebhookJobPayloadFromMap creates a payload from a map
func WebhookJobPayloadFromMap(data map[string]interface{}) (*WebhookJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload WebhookJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
