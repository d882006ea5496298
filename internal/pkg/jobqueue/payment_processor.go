package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lexforge/lexforge/app/models"
)

// PaymentSyncer fetches a payment and applies it to its document.
type PaymentSyncer interface {
	SyncPayment(ctx context.Context, paymentID string) (*models.GeneratedDocument, error)
	MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error
}

// PaymentSyncHandler refreshes the payment state of a document. When the job
// came from a webhook the event is marked processed with the outcome once
// retries are exhausted or the sync succeeds.
func PaymentSyncHandler(syncer PaymentSyncer) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := PaymentSyncPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("failed to parse payment sync payload: %w", err)
		}
		if payload.PaymentID == "" {
			return fmt.Errorf("payment sync job %s has no payment id", job.ID)
		}

		doc, syncErr := syncer.SyncPayment(ctx, payload.PaymentID)
		lastAttempt := job.RetryCount+1 >= job.MaxRetries
		if payload.WebhookEventID > 0 && (syncErr == nil || lastAttempt) {
			if err := syncer.MarkWebhookProcessed(ctx, payload.WebhookEventID, syncErr); err != nil {
				log.Errorf("[Billing] Failed to mark webhook %d processed: %v", payload.WebhookEventID, err)
			}
		}
		if syncErr != nil {
			return syncErr
		}
		log.Infof("[Billing] Payment %s synced, document %s is %s", payload.PaymentID, doc.DocumentID, doc.PaymentStatus)
		return nil
	}
}
