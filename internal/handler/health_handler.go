package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"verify-proxy/internal/queue"
)

const (
	ServiceName    = "verify-proxy"
	ServiceVersion = "1.0.0"
)

// QueueStats exposes live queue state to the health probes.
type QueueStats interface {
	Snapshot() queue.Stats
}

func RegisterHealthRoutes(app fiber.Router, stats QueueStats) {
	app.Get("/", RootHandler())
	app.Get("/health", HealthHandler(stats))
}

// RootHandler is the liveness probe.
func RootHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"service":   ServiceName,
			"version":   ServiceVersion,
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HealthHandler reports queue depth, drain-loop activity, and whether the
// server is draining.
func HealthHandler(stats QueueStats) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot := stats.Snapshot()

		status := "healthy"
		if snapshot.Draining {
			status = "shutting_down"
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":       status,
			"queueLength":  snapshot.Length,
			"isProcessing": snapshot.IsProcessing,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
