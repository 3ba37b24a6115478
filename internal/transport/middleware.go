package transport

import (
	"github.com/gofiber/fiber/v2"

	"verify-proxy/internal/observability"
)

// RequestCorrelation bridges the id assigned by the requestid middleware
// into the request context, so queue and service logs carry it. Must be
// registered after requestid.New().
func RequestCorrelation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := requestID(c); id != "" {
			c.SetUserContext(observability.WithCorrelationID(c.Context(), id))
		}
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
