package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/internal/pkg/layout"
	"github.com/lexforge/lexforge/internal/pkg/pipeline"
	"github.com/lexforge/lexforge/internal/pkg/pricing"
)

type customerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=50"`
	Document string `json:"document" validate:"max=50"`
}

type createDocumentRequest struct {
	TemplateID  string            `json:"templateId" validate:"required,max=64"`
	FieldValues map[string]string `json:"fieldValues"`
	Customer    customerRequest   `json:"customer" validate:"required"`
}

type generateRequest struct {
	DocumentID  string            `json:"documentId"`
	TemplateID  string            `json:"templateId"`
	FieldValues map[string]string `json:"fieldValues"`
}

// HandleCreateDocument stores a pending document order for a template.
func (ctl *Controller) HandleCreateDocument(c *fiber.Ctx) error {
	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err)
	}

	def, err := ctl.deps.Registry.Get(req.TemplateID)
	if err != nil {
		return pipelineError(c, &pipeline.StageError{Stage: pipeline.StageValidated, Reason: err})
	}
	if err := ctl.deps.Registry.Validate(def.ID, layout.Values(req.FieldValues)); err != nil {
		return pipelineError(c, &pipeline.StageError{Stage: pipeline.StageValidated, Reason: err})
	}

	doc := &models.GeneratedDocument{
		DocumentID:       uuid.NewString(),
		TemplateID:       def.ID,
		TemplateName:     def.Name,
		CustomerName:     strings.TrimSpace(req.Customer.Name),
		CustomerEmail:    strings.TrimSpace(req.Customer.Email),
		CustomerPhone:    strings.TrimSpace(req.Customer.Phone),
		CustomerDocument: strings.TrimSpace(req.Customer.Document),
		PaymentStatus:    models.PaymentStatusPending,
		Amount:           def.BasePrice,
	}
	if err := doc.SetFieldValues(req.FieldValues); err != nil {
		return badRequest(c, err)
	}
	if err := doc.Validate(); err != nil {
		return badRequest(c, err)
	}
	if err := ctl.deps.Repositories.Document.Create(doc); err != nil {
		log.Errorf("[Documents] create for template %s failed: %v", def.ID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document could not be stored")
	}

	log.Infof("[Documents] %s created for template %s", doc.DocumentID, def.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"documentId":    doc.DocumentID,
		"templateId":    doc.TemplateID,
		"templateName":  doc.TemplateName,
		"price":         pricing.Format(def.BasePrice),
		"paymentStatus": doc.PaymentStatus,
	})
}

// HandleGetDocument reports the state of a stored document.
func (ctl *Controller) HandleGetDocument(c *fiber.Ctx) error {
	doc, err := ctl.deps.Repositories.Document.GetByDocumentID(c.Params("id"))
	if errors.Is(err, models.ErrDocumentNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "document not found")
	}
	if err != nil {
		log.Errorf("[Documents] lookup %s failed: %v", c.Params("id"), err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document lookup failed")
	}

	return c.JSON(fiber.Map{
		"documentId":    doc.DocumentID,
		"templateId":    doc.TemplateID,
		"templateName":  doc.TemplateName,
		"paymentStatus": doc.PaymentStatus,
		"pageCount":     doc.PageCount,
		"price":         pricing.Format(doc.Amount),
		"finalPrice":    pricing.Format(doc.FinalPrice),
		"downloadCount": doc.DownloadCount,
		"generatedAt":   doc.GeneratedAt,
		"paidAt":        doc.PaidAt,
		"archived":      doc.ArchiveKey != "",
	})
}

// HandleGenerate renders a PDF either from inline field values or from a
// stored document.
func (ctl *Controller) HandleGenerate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	run := pipeline.Request{
		DocumentID: strings.TrimSpace(req.DocumentID),
		TemplateID: strings.TrimSpace(req.TemplateID),
		Values:     layout.Values(req.FieldValues),
	}

	switch {
	case run.DocumentID != "":
		doc, err := ctl.deps.Repositories.Document.GetByDocumentID(run.DocumentID)
		if errors.Is(err, models.ErrDocumentNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "document not found")
		}
		if err != nil {
			log.Errorf("[Generate] lookup %s failed: %v", run.DocumentID, err)
			return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document lookup failed")
		}
		if ctl.deps.RequirePayment && !doc.IsPaid() {
			return errorJSON(c, fiber.StatusPaymentRequired, "payment_required", "document "+doc.DocumentID+" is not paid")
		}
		if due := doc.AmountDue(); ctl.deps.RequirePayment && due.IsPositive() {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error":     "payment_insufficient",
				"message":   "document " + doc.DocumentID + " was priced at " + pricing.Format(doc.FinalPrice) + " but only " + pricing.Format(doc.Amount) + " was paid",
				"amountDue": pricing.Format(due),
			})
		}
		values, err := doc.FieldValues()
		if err != nil {
			log.Errorf("[Generate] field values of %s unreadable: %v", doc.DocumentID, err)
			return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "stored field values unreadable")
		}
		run.TemplateID = doc.TemplateID
		run.Values = layout.Values(values)
	case run.TemplateID == "":
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "templateId or documentId is required")
	case ctl.deps.RequirePayment:
		return errorJSON(c, fiber.StatusPaymentRequired, "payment_required", "create and pay a document before generating it")
	}

	res, err := ctl.deps.Pipeline.Run(c.UserContext(), run)
	if err != nil {
		return pipelineError(c, err)
	}

	if err := ctl.deps.Counters.AddTemplatePurchase(res.TemplateID, res.FinalPrice); err != nil {
		log.Warnf("[Generate] purchase counter for %s not updated: %v", res.TemplateID, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, res.TemplateID))
	c.Set("X-Document-Pages", strconv.Itoa(res.PageCount))
	c.Set("X-Document-Price", pricing.Format(res.FinalPrice))
	if res.DocumentID != "" {
		c.Set("X-Document-Id", res.DocumentID)
	}
	if res.Warning != nil {
		c.Set("X-Document-Warning", "persistence")
	}
	return c.Status(fiber.StatusOK).Send(res.PDF)
}

// pipelineError maps a failed run onto the error body of the generation
// endpoints.
func pipelineError(c *fiber.Ctx, err error) error {
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		log.Errorf("[Generate] unexpected failure: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document generation failed")
	}

	body := fiber.Map{
		"stage":  stageErr.Stage,
		"fields": []string{},
	}
	status := fiber.StatusInternalServerError
	switch {
	case pipeline.IsUnknownTemplate(err):
		status = fiber.StatusNotFound
		body["error"] = "unknown_template"
		body["message"] = stageErr.Reason.Error()
	case pipeline.MissingFields(err) != nil:
		status = fiber.StatusBadRequest
		body["error"] = "missing_fields"
		body["message"] = stageErr.Reason.Error()
		body["fields"] = pipeline.MissingFields(err)
	default:
		body["error"] = "render_failed"
		body["message"] = "document could not be rendered"
	}
	return c.Status(status).JSON(body)
}
