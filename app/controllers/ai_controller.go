package controllers

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/lexforge/lexforge/internal/pkg/docsession"
	"github.com/lexforge/lexforge/internal/pkg/intelligence"
	"github.com/lexforge/lexforge/internal/pkg/upload"
)

type suggestRequest struct {
	DocumentID string `json:"documentId" validate:"required"`
	Request    string `json:"request" validate:"required"`
}

type applyRequest struct {
	DocumentID string                `json:"documentId" validate:"required"`
	Changes    []intelligence.Change `json:"changes" validate:"dive"`
}

type chatRequest struct {
	DocumentID string `json:"documentId" validate:"required"`
	Message    string `json:"message" validate:"required"`
}

type clauseRequest struct {
	Type    string `json:"type" validate:"required"`
	Context string `json:"context"`
}

// HandleAnalyzeUpload extracts the text of an uploaded document, analyses it
// and keeps the result under a new document id.
func (ctl *Controller) HandleAnalyzeUpload(c *fiber.Ctx) error {
	if ctl.deps.Assistant == nil {
		return aiError(c, intelligence.ErrNotConfigured)
	}

	fh, err := c.FormFile("document")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "multipart field 'document' is required")
	}
	if fh.Size > upload.MaxDocumentSize {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "file_too_large", upload.ErrFileTooLarge.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, upload.MaxDocumentSize+1))
	if err != nil {
		return badRequest(c, err)
	}

	kind, mime, err := upload.ValidateDocument(fh.Filename, data)
	switch {
	case errors.Is(err, upload.ErrFileTooLarge):
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "file_too_large", err.Error())
	case err != nil:
		return errorJSON(c, fiber.StatusUnsupportedMediaType, "unsupported_file", err.Error())
	}

	text, err := upload.ExtractText(kind, data)
	if err != nil {
		log.Warnf("[AI] text extraction of %s failed: %v", fh.Filename, err)
		return errorJSON(c, fiber.StatusUnprocessableEntity, "extraction_failed", err.Error())
	}

	analysis, err := ctl.deps.Assistant.AnalyzeDocument(c.UserContext(), text)
	if err != nil {
		return aiError(c, err)
	}
	raw, err := json.Marshal(analysis)
	if err != nil {
		return aiError(c, err)
	}

	doc := &docsession.Context{
		DocumentID: uuid.NewString(),
		Filename:   fh.Filename,
		MimeType:   mime,
		Text:       text,
		Analysis:   raw,
	}
	if err := ctl.deps.Sessions.Save(c.UserContext(), doc); err != nil {
		log.Errorf("[AI] document context %s not saved: %v", doc.DocumentID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document context could not be stored")
	}

	log.Infof("[AI] %s analysed as %s (%d chars)", fh.Filename, doc.DocumentID, len(text))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"documentId": doc.DocumentID,
		"filename":   doc.Filename,
		"characters": len([]rune(text)),
		"analysis":   analysis,
	})
}

func (ctl *Controller) HandleSuggestChanges(c *fiber.Ctx) error {
	var req suggestRequest
	if err := ctl.parseAI(c, &req); err != nil {
		return ignoreHandled(err)
	}
	doc, err := ctl.deps.Sessions.Load(c.UserContext(), req.DocumentID)
	if err != nil {
		return aiError(c, err)
	}
	suggestions, err := ctl.deps.Assistant.SuggestChanges(c.UserContext(), doc.Text, req.Request)
	if err != nil {
		return aiError(c, err)
	}
	return c.JSON(suggestions)
}

// HandleApplyChanges merges changes into the stored text and replaces it.
func (ctl *Controller) HandleApplyChanges(c *fiber.Ctx) error {
	var req applyRequest
	if err := ctl.parseAI(c, &req); err != nil {
		return ignoreHandled(err)
	}
	doc, err := ctl.deps.Sessions.Load(c.UserContext(), req.DocumentID)
	if err != nil {
		return aiError(c, err)
	}
	applied, err := ctl.deps.Assistant.ApplyChanges(c.UserContext(), doc.Text, req.Changes)
	if err != nil {
		return aiError(c, err)
	}

	doc.Text = applied.Texto
	if err := ctl.deps.Sessions.Save(c.UserContext(), doc); err != nil {
		log.Errorf("[AI] document context %s not updated: %v", doc.DocumentID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "document context could not be stored")
	}
	return c.JSON(fiber.Map{
		"documentId": doc.DocumentID,
		"texto":      applied.Texto,
		"alteracoes": applied.Alteracoes,
	})
}

func (ctl *Controller) HandleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := ctl.parseAI(c, &req); err != nil {
		return ignoreHandled(err)
	}
	doc, err := ctl.deps.Sessions.Load(c.UserContext(), req.DocumentID)
	if err != nil {
		return aiError(c, err)
	}

	history := make([]intelligence.Message, 0, len(doc.History))
	for _, m := range doc.History {
		history = append(history, intelligence.Message{Role: intelligence.Role(m.Role), Content: m.Content})
	}
	reply, err := ctl.deps.Assistant.Chat(c.UserContext(), doc.Text, history, req.Message)
	if err != nil {
		return aiError(c, err)
	}

	doc.Append(string(intelligence.RoleUser), req.Message)
	doc.Append(string(intelligence.RoleAssistant), reply)
	if err := ctl.deps.Sessions.Save(c.UserContext(), doc); err != nil {
		log.Warnf("[AI] chat history of %s not saved: %v", doc.DocumentID, err)
	}
	return c.JSON(fiber.Map{
		"documentId": doc.DocumentID,
		"reply":      reply,
		"turns":      len(doc.History) / 2,
	})
}

func (ctl *Controller) HandleGenerateClause(c *fiber.Ctx) error {
	var req clauseRequest
	if err := ctl.parseAI(c, &req); err != nil {
		return ignoreHandled(err)
	}
	clause, err := ctl.deps.Assistant.GenerateClause(c.UserContext(), req.Type, req.Context)
	if err != nil {
		return aiError(c, err)
	}
	return c.JSON(fiber.Map{"clausula": clause})
}

// parseAI checks the provider and decodes a JSON body. A non-nil return means
// the response is already written.
func (ctl *Controller) parseAI(c *fiber.Ctx, out any) error {
	if ctl.deps.Assistant == nil {
		return errHandled(aiError(c, intelligence.ErrNotConfigured))
	}
	if err := c.BodyParser(out); err != nil {
		return errHandled(badRequest(c, err))
	}
	if err := validate.Struct(out); err != nil {
		return errHandled(badRequest(c, err))
	}
	return nil
}

func aiError(c *fiber.Ctx, err error) error {
	var pe *intelligence.ProviderError
	switch {
	case errors.Is(err, docsession.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "document not found, upload it again")
	case errors.Is(err, intelligence.ErrNotConfigured):
		return errorJSON(c, fiber.StatusServiceUnavailable, "ai_unavailable", "no AI provider configured")
	case errors.As(err, &pe):
		return errorJSON(c, fiber.StatusBadGateway, "ai_provider_error", pe.Error())
	default:
		log.Errorf("[AI] request failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "request failed")
	}
}
