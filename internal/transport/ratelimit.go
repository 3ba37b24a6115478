package transport

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// InboundRateLimit caps accepted requests per second across all callers.
// A ratePerSec of 0 or less disables the middleware.
func InboundRateLimit(ratePerSec int) fiber.Handler {
	if ratePerSec <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	limiter := rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
