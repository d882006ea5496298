package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/app/repository"
	"github.com/lexforge/lexforge/internal/pkg/billing"
	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/docsession"
	"github.com/lexforge/lexforge/internal/pkg/intelligence"
	"github.com/lexforge/lexforge/internal/pkg/jobqueue"
	"github.com/lexforge/lexforge/internal/pkg/metrics/counter"
	"github.com/lexforge/lexforge/internal/pkg/pipeline"
)

var validate = validator.New()

// errResponseHandled signals that a helper already wrote the response.
var errResponseHandled = errors.New("response already written")

func errHandled(writeErr error) error {
	if writeErr != nil {
		return writeErr
	}
	return errResponseHandled
}

func ignoreHandled(err error) error {
	if errors.Is(err, errResponseHandled) {
		return nil
	}
	return err
}

// TemplateCounters records template telemetry.
type TemplateCounters interface {
	AddTemplateView(templateID string) error
	AddTemplatePurchase(templateID string, price decimal.Decimal) error
}

// PaymentService is the billing surface used by the payment handlers.
type PaymentService interface {
	CreateCheckout(ctx context.Context, documentID string) (*billing.Preference, error)
	SyncPayment(ctx context.Context, paymentID string) (*models.GeneratedDocument, error)
	RecordWebhookEvent(ctx context.Context, in billing.WebhookEventInput) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error
}

// PaymentSyncScheduler queues payment lookups triggered by webhooks.
type PaymentSyncScheduler interface {
	EnqueuePaymentSync(ctx context.Context, p jobqueue.PaymentSyncPayload) (*jobqueue.Job, error)
}

// Dependencies wires the handlers. Assistant, Payments and PaymentQueue may
// be nil; the matching endpoints then answer 503 (or sync inline for the
// queue).
type Dependencies struct {
	Registry       *catalog.Registry
	Pipeline       *pipeline.Pipeline
	Repositories   *repository.Repositories
	DB             *gorm.DB
	Sessions       docsession.Store
	Assistant      intelligence.Provider
	Payments       PaymentService
	PaymentQueue   PaymentSyncScheduler
	Counters       TemplateCounters
	WebhookSecret  string
	RequirePayment bool
	Now            func() time.Time
}

// Controller holds the HTTP handlers of the public API.
type Controller struct {
	deps Dependencies
}

func New(deps Dependencies) *Controller {
	if deps.Counters == nil {
		deps.Counters = redisCounters{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{deps: deps}
}

type redisCounters struct{}

func (redisCounters) AddTemplateView(templateID string) error {
	return counter.AddTemplateView(templateID)
}

func (redisCounters) AddTemplatePurchase(templateID string, price decimal.Decimal) error {
	return counter.AddTemplatePurchase(templateID, price)
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return errorJSON(c, fiber.StatusBadRequest, "invalid_request", err.Error())
}
