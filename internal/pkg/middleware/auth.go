package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/lexforge/lexforge/internal/pkg/env"
)

// AdminAuth guards operator endpoints (/metrics, template stats) with basic
// auth from METRICS_USER and METRICS_PASSWORD.
func AdminAuth() fiber.Handler {
	user := env.GetEnv("METRICS_USER", "admin")
	password := env.GetEnv("METRICS_PASSWORD", "")
	if password == "" {
		log.Warn("[Middleware] METRICS_PASSWORD is empty, admin endpoints are locked")
		return func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "admin access is not configured",
			})
		}
	}

	return basicauth.New(basicauth.Config{
		Users: map[string]string{user: password},
		Realm: "LexForge",
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="LexForge"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "admin credentials required",
			})
		},
	})
}
