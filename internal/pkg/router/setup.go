package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/redis/go-redis/v9"

	"github.com/lexforge/lexforge/app/controllers"
	"github.com/lexforge/lexforge/internal/pkg/middleware"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter mounts the operator routes and the public API. cacheClient
// backs the API rate limiter and may be nil.
func InstallRouter(app *fiber.App, ctl *controllers.Controller, cacheClient *redis.Client) {
	setup(app, NewOpsRouter(), NewApiRouter(ctl, cacheClient))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// OpsRouter serves /metrics behind admin basic auth.
type OpsRouter struct{}

func (OpsRouter) InstallRouter(app *fiber.App) {
	app.Get("/metrics", middleware.AdminAuth(), monitor.New(monitor.Config{Title: "LexForge Metrics"}))
}

func NewOpsRouter() *OpsRouter {
	return &OpsRouter{}
}
