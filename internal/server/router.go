package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/slotmachine/backend/internal/api/handler"
	"github.com/slotmachine/backend/internal/api/middleware"
)

// SetupRoutes registers the three HTTP endpoints the core exposes:
// GET /init, POST /spin, and the ambient GET /health.
func SetupRoutes(
	app *fiber.App,
	rateLimiter *middleware.RateLimiter,
	gameHandler *handler.GameHandler,
) {
	app.Get("/health", gameHandler.Health)

	public := rateLimiter.PublicMiddleware()
	app.Get("/init", public, gameHandler.Init)
	app.Post("/spin", public, gameHandler.Spin)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"protocolVersion": "1.0",
			"error": fiber.Map{
				"code":        "INVALID_REQUEST",
				"message":     "route not found",
				"recoverable": false,
			},
		})
	})
}
