package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexforge/lexforge/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct {
	ctl *controllers.Controller
}

// NewAPIServer creates a new API server instance
func NewAPIServer(ctl *controllers.Controller) *APIServer {
	return &APIServer{ctl: ctl}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

func (s *APIServer) GetHealth(c *fiber.Ctx) error {
	return s.ctl.HandleHealth(c)
}

func (s *APIServer) ListTemplates(c *fiber.Ctx) error {
	return s.ctl.HandleListTemplates(c)
}

// GetTemplateStats is protected by basic auth in the router.
func (s *APIServer) GetTemplateStats(c *fiber.Ctx) error {
	return s.ctl.HandleTemplateStats(c)
}

// ListTemplatesByCategory reads the category from the route params; the
// wrapper already set it.
func (s *APIServer) ListTemplatesByCategory(c *fiber.Ctx, category string) error {
	if category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "category missing"})
	}
	return s.ctl.HandleListTemplatesByCategory(c)
}

func (s *APIServer) GetTemplate(c *fiber.Ctx, id string) error {
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "id missing"})
	}
	return s.ctl.HandleGetTemplate(c)
}

func (s *APIServer) CreateDocument(c *fiber.Ctx) error {
	return s.ctl.HandleCreateDocument(c)
}

func (s *APIServer) GetDocument(c *fiber.Ctx, id string) error {
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "id missing"})
	}
	return s.ctl.HandleGetDocument(c)
}

// GenerateDocument streams the rendered PDF.
func (s *APIServer) GenerateDocument(c *fiber.Ctx) error {
	return s.ctl.HandleGenerate(c)
}

func (s *APIServer) UploadForAnalysis(c *fiber.Ctx) error {
	return s.ctl.HandleAnalyzeUpload(c)
}

func (s *APIServer) SuggestChanges(c *fiber.Ctx) error {
	return s.ctl.HandleSuggestChanges(c)
}

func (s *APIServer) ApplyChanges(c *fiber.Ctx) error {
	return s.ctl.HandleApplyChanges(c)
}

func (s *APIServer) Chat(c *fiber.Ctx) error {
	return s.ctl.HandleChat(c)
}

func (s *APIServer) GenerateClause(c *fiber.Ctx) error {
	return s.ctl.HandleGenerateClause(c)
}

func (s *APIServer) CreatePayment(c *fiber.Ctx) error {
	return s.ctl.HandleCreatePayment(c)
}

// MercadoPagoWebhook is called by Mercado Pago; it carries no API auth and
// relies on the x-signature header.
func (s *APIServer) MercadoPagoWebhook(c *fiber.Ctx) error {
	return s.ctl.HandleMercadoPagoWebhook(c)
}
