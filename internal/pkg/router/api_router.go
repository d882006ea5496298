package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lexforge/lexforge/app/controllers"
	apiv1 "github.com/lexforge/lexforge/internal/api/v1"
	"github.com/lexforge/lexforge/internal/pkg/middleware"
)

type ApiRouter struct {
	ctl         *controllers.Controller
	cacheClient *redis.Client
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", middleware.RateLimiter(h.cacheClient))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "LexForge API",
			"docs":    "/docs/api/v1",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, apiv1.NewAPIServer(h.ctl), apiv1.Options{
		StatsAuth: middleware.AdminAuth(),
	})
}

func NewApiRouter(ctl *controllers.Controller, cacheClient *redis.Client) *ApiRouter {
	return &ApiRouter{ctl: ctl, cacheClient: cacheClient}
}
