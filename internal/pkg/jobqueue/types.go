package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeDocumentArchive JobType = "document_archive"
	JobTypePaymentSync     JobType = "payment_sync"
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

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
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

// DocumentArchivePayload names a rendered PDF to copy into object storage.
type DocumentArchivePayload struct {
	DocumentID  string    `json:"document_id"`
	FilePath    string    `json:"file_path"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (p DocumentArchivePayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"document_id":  p.DocumentID,
		"file_path":    p.FilePath,
		"generated_at": p.GeneratedAt.Format(time.RFC3339Nano),
	}
}

func DocumentArchivePayloadFromMap(data map[string]interface{}) (*DocumentArchivePayload, error) {
	var payload DocumentArchivePayload
	err := decodePayload(data, &payload)
	return &payload, err
}

// PaymentSyncPayload names a provider payment whose state must be fetched.
// WebhookEventID is set when the sync was triggered by a notification.
type PaymentSyncPayload struct {
	PaymentID      string `json:"payment_id"`
	WebhookEventID uint   `json:"webhook_event_id,omitempty"`
}

func (p PaymentSyncPayload) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"payment_id": p.PaymentID,
	}
	if p.WebhookEventID > 0 {
		m["webhook_event_id"] = p.WebhookEventID
	}
	return m
}

func PaymentSyncPayloadFromMap(data map[string]interface{}) (*PaymentSyncPayload, error) {
	var payload PaymentSyncPayload
	err := decodePayload(data, &payload)
	return &payload, err
}

func decodePayload(data map[string]interface{}, out interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, out)
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
