package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lexforge/lexforge/app/controllers"
	"github.com/lexforge/lexforge/app/repository"
	"github.com/lexforge/lexforge/internal/pkg/archive"
	"github.com/lexforge/lexforge/internal/pkg/billing"
	"github.com/lexforge/lexforge/internal/pkg/cache"
	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/database"
	"github.com/lexforge/lexforge/internal/pkg/docsession"
	"github.com/lexforge/lexforge/internal/pkg/documents"
	"github.com/lexforge/lexforge/internal/pkg/env"
	"github.com/lexforge/lexforge/internal/pkg/intelligence"
	"github.com/lexforge/lexforge/internal/pkg/jobqueue"
	"github.com/lexforge/lexforge/internal/pkg/layout"
	"github.com/lexforge/lexforge/internal/pkg/pipeline"
	"github.com/lexforge/lexforge/internal/pkg/pricing"
	"github.com/lexforge/lexforge/internal/pkg/render"
	"github.com/lexforge/lexforge/internal/pkg/router"
)

func main() {
	app, manager := NewApplication()
	manager.Start()

	go func() {
		addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
		if err := app.Listen(addr); err != nil {
			log.Fatalf("[Server] %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("[Server] Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("[Server] Shutdown error: %v", err)
	}
	manager.Stop()
}

// NewApplication wires every component from the environment.
func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	ctx := context.Background()
	basePath := findBasePath()

	registry := catalog.Default()
	fonts := layout.LoadFontLibrary(env.GetEnv("FONT_DIR", basePath+"fonts"), catalog.FontFamilies(registry.List())...)
	renderer := render.New(registry,
		render.WithFonts(fonts),
		render.WithCompression(env.GetEnvBool("RENDER_COMPRESS", true)),
	)

	manager := jobqueue.GetManager()
	queue := manager.GetQueue()

	var archiver documents.ArchiveScheduler
	archiveCfg, err := archive.LoadConfig()
	if err != nil {
		log.Errorf("[Archive] %v", err)
	} else if archiveCfg.IsEnabled() {
		client, err := archive.NewClient(ctx, archiveCfg)
		if err != nil {
			log.Errorf("[Archive] Disabled: %v", err)
		} else {
			queue.Register(jobqueue.JobTypeDocumentArchive, jobqueue.DocumentArchiveHandler(client, database.GetDB()))
			archiver = queue
		}
	}

	repos := repository.GetGlobalRepositories()
	store := documents.NewStore(env.GetEnv("DOCUMENTS_DIR", basePath+"storage/documents"), repos.Document, registry, archiver)

	deps := controllers.Dependencies{
		Registry:       registry,
		Pipeline:       pipeline.New(renderer, pricing.LoadPolicy(), store),
		Repositories:   repos,
		DB:             database.GetDB(),
		Sessions:       docsession.New(ctx, cache.GetClient(), docsession.DefaultTTL),
		WebhookSecret:  env.GetEnv("MERCADOPAGO_WEBHOOK_SECRET", ""),
		RequirePayment: env.GetEnvBool("REQUIRE_PAYMENT", false),
	}

	if assistant, err := intelligence.NewFromEnv(ctx); err == nil {
		deps.Assistant = assistant
	} else {
		log.Warnf("[Intelligence] %v", err)
	}

	if mp := billing.NewMercadoPagoClientFromEnv(); mp.Configured() {
		payments := billing.NewServiceFromDB(database.GetDB(), mp)
		queue.Register(jobqueue.JobTypePaymentSync, jobqueue.PaymentSyncHandler(payments))
		deps.Payments = payments
		deps.PaymentQueue = queue
	} else {
		log.Warn("[Billing] MERCADOPAGO_ACCESS_TOKEN is empty, payments disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:   "LexForge",
		BodyLimit: 12 * 1024 * 1024,
	})

	app.Use(recover.New(), logger.New(), cors.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
		Title:    "LexForge API",
	}))

	// ROUTER
	router.InstallRouter(app, controllers.New(deps), cache.GetClient())

	return app, manager
}

func findBasePath() string {
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			return path
		}
	}
	panic("Could not find project root directory")
}
