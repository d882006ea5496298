package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Pong is the reply of GET /ping.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface lists the operations of public/docs/v1/openapi.yml.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	GetHealth(c *fiber.Ctx) error

	ListTemplates(c *fiber.Ctx) error
	GetTemplateStats(c *fiber.Ctx) error
	ListTemplatesByCategory(c *fiber.Ctx, category string) error
	GetTemplate(c *fiber.Ctx, id string) error

	CreateDocument(c *fiber.Ctx) error
	GetDocument(c *fiber.Ctx, id string) error
	GenerateDocument(c *fiber.Ctx) error

	UploadForAnalysis(c *fiber.Ctx) error
	SuggestChanges(c *fiber.Ctx) error
	ApplyChanges(c *fiber.Ctx) error
	Chat(c *fiber.Ctx) error
	GenerateClause(c *fiber.Ctx) error

	CreatePayment(c *fiber.Ctx) error
	MercadoPagoWebhook(c *fiber.Ctx) error
}

// Options adds middleware to selected routes.
type Options struct {
	// StatsAuth guards GET /templates/stats.
	StatsAuth fiber.Handler
}

// RegisterHandlers mounts every operation of si on router.
func RegisterHandlers(router fiber.Router, si ServerInterface, opts Options) {
	router.Get("/ping", si.GetPing)
	router.Get("/health", si.GetHealth)

	router.Get("/templates", si.ListTemplates)
	stats := []fiber.Handler{si.GetTemplateStats}
	if opts.StatsAuth != nil {
		stats = append([]fiber.Handler{opts.StatsAuth}, stats...)
	}
	router.Get("/templates/stats", stats...)
	router.Get("/templates/category/:category", func(c *fiber.Ctx) error {
		return si.ListTemplatesByCategory(c, c.Params("category"))
	})
	router.Get("/templates/:id", func(c *fiber.Ctx) error {
		return si.GetTemplate(c, c.Params("id"))
	})

	router.Post("/documents", si.CreateDocument)
	router.Get("/documents/:id", func(c *fiber.Ctx) error {
		return si.GetDocument(c, c.Params("id"))
	})
	router.Post("/generate", si.GenerateDocument)

	router.Post("/ai/upload", si.UploadForAnalysis)
	router.Post("/ai/suggest", si.SuggestChanges)
	router.Post("/ai/apply", si.ApplyChanges)
	router.Post("/ai/chat", si.Chat)
	router.Post("/ai/clause", si.GenerateClause)

	router.Post("/payments", si.CreatePayment)
	router.Post("/webhooks/mercadopago", si.MercadoPagoWebhook)
}
