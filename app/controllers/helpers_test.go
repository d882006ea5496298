package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lexforge/lexforge/app/repository"
	"github.com/lexforge/lexforge/internal/pkg/billing"
	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/database"
	"github.com/lexforge/lexforge/internal/pkg/docsession"
	"github.com/lexforge/lexforge/internal/pkg/documents"
	"github.com/lexforge/lexforge/internal/pkg/intelligence"
	"github.com/lexforge/lexforge/internal/pkg/jobqueue"
	"github.com/lexforge/lexforge/internal/pkg/pipeline"
	"github.com/lexforge/lexforge/internal/pkg/pricing"
	"github.com/lexforge/lexforge/internal/pkg/render"
)

var fixedNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

type fakeCounters struct {
	mu        sync.Mutex
	views     map[string]int
	purchases map[string]decimal.Decimal
	err       error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{views: map[string]int{}, purchases: map[string]decimal.Decimal{}}
}

func (f *fakeCounters) AddTemplateView(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[id]++
	return f.err
}

func (f *fakeCounters) AddTemplatePurchase(id string, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases[id] = f.purchases[id].Add(price)
	return f.err
}

// fakeCompleter answers every prompt with reply and records what it got.
type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []intelligence.Prompt
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, p intelligence.Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeGateway struct {
	items    []billing.CheckoutItem
	payments map[string]*billing.Payment
	err      error
}

func (f *fakeGateway) CreatePreference(_ context.Context, item billing.CheckoutItem) (*billing.Preference, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items = append(f.items, item)
	return &billing.Preference{
		ID:               "pref-" + item.DocumentID,
		InitPoint:        "https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=pref-" + item.DocumentID,
		SandboxInitPoint: "https://sandbox.mercadopago.com.br/checkout/v1/redirect?pref_id=pref-" + item.DocumentID,
	}, nil
}

func (f *fakeGateway) GetPayment(_ context.Context, id string) (*billing.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, errors.New("status=404 body=not found")
	}
	p.ID = id
	return p, nil
}

type fakePaymentQueue struct {
	payloads []jobqueue.PaymentSyncPayload
	err      error
}

func (f *fakePaymentQueue) EnqueuePaymentSync(_ context.Context, p jobqueue.PaymentSyncPayload) (*jobqueue.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, p)
	return &jobqueue.Job{ID: "job-1", Type: jobqueue.JobTypePaymentSync}, nil
}

type failingPersister struct{}

func (failingPersister) Persist(context.Context, *pipeline.Document) error {
	return errors.New("disk full")
}

type fixture struct {
	app       *fiber.App
	db        *gorm.DB
	repos     *repository.Repositories
	counters  *fakeCounters
	completer *fakeCompleter
	gateway   *fakeGateway
	queue     *fakePaymentQueue
	sessions  docsession.Store
}

const testWebhookSecret = "whsec-test"

func newFixture(t *testing.T, configure ...func(*Dependencies)) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	registry := catalog.Default()
	repos := repository.NewRepositories(db)
	renderer := render.New(registry, render.WithClock(func() time.Time { return fixedNow }))
	store := documents.NewStore(t.TempDir(), repos.Document, registry, nil)

	f := &fixture{
		db:        db,
		repos:     repos,
		counters:  newFakeCounters(),
		completer: &fakeCompleter{},
		gateway:   &fakeGateway{payments: map[string]*billing.Payment{}},
		queue:     &fakePaymentQueue{},
	}

	deps := Dependencies{
		Registry:      registry,
		Pipeline:      pipeline.New(renderer, pricing.DefaultPolicy(), store),
		Repositories:  repos,
		DB:            db,
		Sessions:      docsession.NewMemoryStore(time.Hour),
		Assistant:     intelligence.NewAssistant(f.completer),
		Payments:      billing.NewServiceFromDB(db, f.gateway),
		PaymentQueue:  f.queue,
		Counters:      f.counters,
		WebhookSecret: testWebhookSecret,
		Now:           func() time.Time { return fixedNow },
	}
	for _, fn := range configure {
		fn(&deps)
	}

	f.sessions = deps.Sessions
	ctl := New(deps)
	app := fiber.New()
	v1 := app.Group("/api/v1")
	v1.Get("/health", ctl.HandleHealth)
	v1.Get("/templates", ctl.HandleListTemplates)
	v1.Get("/templates/stats", ctl.HandleTemplateStats)
	v1.Get("/templates/category/:category", ctl.HandleListTemplatesByCategory)
	v1.Get("/templates/:id", ctl.HandleGetTemplate)
	v1.Post("/documents", ctl.HandleCreateDocument)
	v1.Get("/documents/:id", ctl.HandleGetDocument)
	v1.Post("/generate", ctl.HandleGenerate)
	v1.Post("/ai/upload", ctl.HandleAnalyzeUpload)
	v1.Post("/ai/suggest", ctl.HandleSuggestChanges)
	v1.Post("/ai/apply", ctl.HandleApplyChanges)
	v1.Post("/ai/chat", ctl.HandleChat)
	v1.Post("/ai/clause", ctl.HandleGenerateClause)
	v1.Post("/payments", ctl.HandleCreatePayment)
	v1.Post("/webhooks/mercadopago", ctl.HandleMercadoPagoWebhook)
	f.app = app
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return f.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func contractValues() map[string]string {
	return map[string]string{
		"contratante":     "Maria Souza",
		"contratante_doc": "123.456.789-00",
		"contratado":      "Escritório Silva",
		"contratado_doc":  "11.111.111/0001-11",
		"objeto":          "Assessoria jurídica mensal.",
		"valor":           "R$ 2.000,00",
		"forma_pagamento": "Pix",
		"prazo":           "12 meses",
		"foro":            "São Paulo",
	}
}
