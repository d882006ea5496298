package controllers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/internal/pkg/billing"
	"github.com/lexforge/lexforge/internal/pkg/jobqueue"
	"github.com/lexforge/lexforge/internal/pkg/layout"
	"github.com/lexforge/lexforge/internal/pkg/pipeline"
	"github.com/lexforge/lexforge/internal/pkg/pricing"
)

type paymentRequest struct {
	DocumentID string `json:"documentId" validate:"required,uuid"`
}

type mercadoPagoNotification struct {
	ID     json.Number `json:"id"`
	Type   string      `json:"type"`
	Action string      `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// HandleCreatePayment opens a Mercado Pago checkout for a stored document.
func (ctl *Controller) HandleCreatePayment(c *fiber.Ctx) error {
	if ctl.deps.Payments == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "payments_unavailable", "payments are not configured")
	}
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err)
	}

	if err := ctl.quoteDocument(c, req.DocumentID); err != nil {
		return ignoreHandled(err)
	}

	pref, err := ctl.deps.Payments.CreateCheckout(c.UserContext(), req.DocumentID)
	switch {
	case errors.Is(err, models.ErrDocumentNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "document not found")
	case errors.Is(err, billing.ErrAlreadyPaid):
		return errorJSON(c, fiber.StatusConflict, "already_paid", "document is already paid")
	case errors.Is(err, billing.ErrMercadoPagoNotConfigured):
		return errorJSON(c, fiber.StatusServiceUnavailable, "payments_unavailable", "payments are not configured")
	case err != nil:
		log.Errorf("[Payments] checkout for %s failed: %v", req.DocumentID, err)
		return errorJSON(c, fiber.StatusBadGateway, "payment_provider_error", "payment preference could not be created")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"documentId":       req.DocumentID,
		"preferenceId":     pref.ID,
		"initPoint":        pref.InitPoint,
		"sandboxInitPoint": pref.SandboxInitPoint,
	})
}

// quoteDocument renders an unpaid stored document and keeps its page count
// and price for the checkout. A non-nil return means the response is already
// written.
func (ctl *Controller) quoteDocument(c *fiber.Ctx, documentID string) error {
	if ctl.deps.Pipeline == nil {
		return nil
	}
	doc, err := ctl.deps.Repositories.Document.GetByDocumentID(documentID)
	if errors.Is(err, models.ErrDocumentNotFound) {
		return errHandled(errorJSON(c, fiber.StatusNotFound, "not_found", "document not found"))
	}
	if err != nil {
		log.Errorf("[Payments] lookup %s failed: %v", documentID, err)
		return errHandled(errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document lookup failed"))
	}
	if doc.IsPaid() {
		return nil
	}
	values, err := doc.FieldValues()
	if err != nil {
		log.Errorf("[Payments] field values of %s unreadable: %v", documentID, err)
		return errHandled(errorJSON(c, fiber.StatusInternalServerError, "internal_error", "stored field values unreadable"))
	}

	quote, err := ctl.deps.Pipeline.Quote(c.UserContext(), pipeline.Request{
		DocumentID: doc.DocumentID,
		TemplateID: doc.TemplateID,
		Values:     layout.Values(values),
	})
	if err != nil {
		return errHandled(pipelineError(c, err))
	}
	if err := ctl.deps.Repositories.Document.SaveQuote(doc.DocumentID, quote.PageCount, quote.FinalPrice); err != nil {
		log.Errorf("[Payments] quote of %s not stored: %v", documentID, err)
		return errHandled(errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document price could not be stored"))
	}
	log.Infof("[Payments] %s quoted at %s for %d pages", doc.DocumentID, pricing.Format(quote.FinalPrice), quote.PageCount)
	return nil
}

// HandleMercadoPagoWebhook verifies, records and dispatches a Mercado Pago
// notification. Every notification is recorded once; payment notifications
// are resolved by the payment_sync job.
func (ctl *Controller) HandleMercadoPagoWebhook(c *fiber.Ctx) error {
	if ctl.deps.Payments == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "payments_unavailable", "payments are not configured")
	}

	var note mercadoPagoNotification
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &note); err != nil {
			return badRequest(c, err)
		}
	}
	dataID := strings.TrimSpace(c.Query("data.id", note.Data.ID))
	topic := strings.TrimSpace(note.Type)
	if topic == "" {
		topic = strings.TrimSpace(c.Query("type", c.Query("topic")))
	}
	requestID := c.Get("x-request-id")

	if !billing.VerifyMercadoPagoSignature(c.Get("x-signature"), requestID, dataID, ctl.deps.WebhookSecret) {
		log.Warnf("[Payments] rejected webhook with invalid signature (topic=%s data.id=%s)", topic, dataID)
		return errorJSON(c, fiber.StatusUnauthorized, "invalid_signature", "signature verification failed")
	}

	created, event, err := ctl.deps.Payments.RecordWebhookEvent(c.UserContext(), billing.WebhookEventInput{
		Provider:        billing.ProviderMercadoPago,
		ProviderEventID: note.ID.String(),
		Topic:           topic,
		Action:          note.Action,
		ResourceID:      dataID,
		RequestID:       requestID,
		PayloadJSON:     string(c.Body()),
		SignatureValid:  true,
	})
	if err != nil {
		log.Errorf("[Payments] webhook event not recorded: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "event could not be recorded")
	}
	if !created {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	if topic != "payment" || dataID == "" {
		if err := ctl.deps.Payments.MarkWebhookProcessed(c.UserContext(), event.ID, nil); err != nil {
			log.Warnf("[Payments] webhook %d not marked processed: %v", event.ID, err)
		}
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	}

	if ctl.deps.PaymentQueue != nil {
		job, err := ctl.deps.PaymentQueue.EnqueuePaymentSync(c.UserContext(), jobqueue.PaymentSyncPayload{
			PaymentID:      dataID,
			WebhookEventID: event.ID,
		})
		if err == nil {
			log.Infof("[Payments] payment %s queued as job %s", dataID, job.ID)
			return c.JSON(fiber.Map{"ok": true, "queued": true})
		}
		log.Warnf("[Payments] enqueue of payment %s failed, syncing inline: %v", dataID, err)
	}

	_, syncErr := ctl.deps.Payments.SyncPayment(c.UserContext(), dataID)
	if err := ctl.deps.Payments.MarkWebhookProcessed(c.UserContext(), event.ID, syncErr); err != nil {
		log.Warnf("[Payments] webhook %d not marked processed: %v", event.ID, err)
	}
	if syncErr != nil {
		log.Errorf("[Payments] payment %s sync failed: %v", dataID, syncErr)
		return errorJSON(c, fiber.StatusBadGateway, "payment_provider_error", "payment could not be synced")
	}
	return c.JSON(fiber.Map{"ok": true, "synced": true})
}
