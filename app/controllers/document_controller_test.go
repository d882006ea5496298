package controllers

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/internal/pkg/pipeline"
	"github.com/lexforge/lexforge/internal/pkg/pricing"
	"github.com/lexforge/lexforge/internal/pkg/render"
)

func createDocument(t *testing.T, f *fixture, templateID string, values map[string]string) string {
	t.Helper()
	resp := f.postJSON(t, "/api/v1/documents", fiber.Map{
		"templateId":  templateID,
		"fieldValues": values,
		"customer":    fiber.Map{"name": "Maria Souza", "email": "maria@example.com", "phone": "+55 11 99999-0000"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "15.00", body["price"])
	assert.Equal(t, models.PaymentStatusPending, body["paymentStatus"])
	return body["documentId"].(string)
}

func TestHandleGenerateShortContract(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/generate", fiber.Map{"templateId": "contrato-moderno", "fieldValues": contractValues()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "1", resp.Header.Get("X-Document-Pages"))
	assert.Equal(t, "15.00", resp.Header.Get("X-Document-Price"))
	assert.NotEmpty(t, resp.Header.Get("X-Document-Id"))
	assert.Empty(t, resp.Header.Get("X-Document-Warning"))

	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	assert.Equal(t, "15.00", pricing.Format(f.counters.purchases["contrato-moderno"]))

	row, err := f.repos.Document.GetByDocumentID(resp.Header.Get("X-Document-Id"))
	require.NoError(t, err)
	assert.Equal(t, 1, row.PageCount)
	assert.Equal(t, 1, row.DownloadCount)
}

func TestHandleGenerateLongContractIsExtendedTier(t *testing.T) {
	f := newFixture(t)

	values := contractValues()
	values["objeto"] = strings.Repeat("O CONTRATADO prestará serviços de consultoria jurídica empresarial. ", 1200)

	resp := f.postJSON(t, "/api/v1/generate", fiber.Map{"templateId": "contrato-moderno", "fieldValues": values})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "25.00", resp.Header.Get("X-Document-Price"))
	assert.NotEqual(t, "1", resp.Header.Get("X-Document-Pages"))
}

func TestHandleGenerateUnknownTemplate(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/generate", fiber.Map{"templateId": "does-not-exist", "fieldValues": contractValues()})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "unknown_template", body["error"])
	assert.Equal(t, string(pipeline.StageValidated), body["stage"])
	assert.Empty(t, f.counters.purchases)
}

func TestHandleGenerateMissingField(t *testing.T) {
	f := newFixture(t)

	values := contractValues()
	delete(values, "foro")
	resp := f.postJSON(t, "/api/v1/generate", fiber.Map{"templateId": "contrato-simples", "fieldValues": values})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "missing_fields", body["error"])
	assert.Equal(t, []any{"foro"}, body["fields"])
	assert.Contains(t, body["message"], "foro")
}

func TestHandleGenerateRequiresTemplateOrDocument(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/generate", fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleGeneratePersistenceWarning(t *testing.T) {
	f := newFixture(t, func(d *Dependencies) {
		renderer := render.New(d.Registry, render.WithClock(func() time.Time { return fixedNow }))
		d.Pipeline = pipeline.New(renderer, pricing.DefaultPolicy(), failingPersister{})
	})

	resp := f.postJSON(t, "/api/v1/generate", fiber.Map{"templateId": "contrato-moderno", "fieldValues": contractValues()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "persistence", resp.Header.Get("X-Document-Warning"))
	assert.Equal(t, "15.00", resp.Header.Get("X-Document-Price"))
}

func TestHandleGenerateStoredDocumentRequiresPayment(t *testing.T) {
	f := newFixture(t, func(d *Dependencies) { d.RequirePayment = true })
	id := createDocument(t, f, "contrato-moderno", contractValues())

	resp := f.postJSON(t, "/api/v1/generate", fiber.Map{"documentId": id})
	require.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "payment_required", decodeBody(t, resp)["error"])

	resp = f.postJSON(t, "/api/v1/generate", fiber.Map{"templateId": "contrato-moderno", "fieldValues": contractValues()})
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	require.NoError(t, f.db.Model(&models.GeneratedDocument{}).
		Where("document_id = ?", id).
		Update("payment_status", models.PaymentStatusApproved).Error)

	resp = f.postJSON(t, "/api/v1/generate", fiber.Map{"documentId": id})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, id, resp.Header.Get("X-Document-Id"))

	status := decodeBody(t, f.get(t, "/api/v1/documents/"+id))
	assert.Equal(t, models.PaymentStatusApproved, status["paymentStatus"])
	assert.EqualValues(t, 1, status["pageCount"])
	assert.EqualValues(t, 1, status["downloadCount"])
	assert.Equal(t, "15.00", status["finalPrice"])
	assert.Equal(t, "Contrato Moderno Azul", status["templateName"])
}

func TestHandleCreateDocumentValidation(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/documents", fiber.Map{
		"templateId":  "contrato-moderno",
		"fieldValues": contractValues(),
		"customer":    fiber.Map{"name": "Maria", "email": "not-an-email"},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	values := contractValues()
	delete(values, "valor")
	delete(values, "prazo")
	resp = f.postJSON(t, "/api/v1/documents", fiber.Map{
		"templateId":  "contrato-moderno",
		"fieldValues": values,
		"customer":    fiber.Map{"name": "Maria", "email": "maria@example.com"},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []any{"valor", "prazo"}, decodeBody(t, resp)["fields"])

	resp = f.postJSON(t, "/api/v1/documents", fiber.Map{
		"templateId":  "does-not-exist",
		"fieldValues": contractValues(),
		"customer":    fiber.Map{"name": "Maria", "email": "maria@example.com"},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleGetDocumentNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/api/v1/documents/4f1c2e7a-0000-4000-8000-000000000000")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = f.postJSON(t, "/api/v1/generate", fiber.Map{"documentId": "4f1c2e7a-0000-4000-8000-000000000000"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
