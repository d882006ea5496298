package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lexforge/lexforge/internal/pkg/database"
)

// HandleHealth reports process and database state.
func (ctl *Controller) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, db, code := "ok", "connected", fiber.StatusOK
	if err := database.Ping(ctx, ctl.deps.DB); err != nil {
		log.Warnf("[Health] database ping failed: %v", err)
		status, db, code = "degraded", "disconnected", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"database":  db,
		"templates": ctl.deps.Registry.Len(),
		"timestamp": ctl.deps.Now().UTC().Format(time.RFC3339),
	})
}
