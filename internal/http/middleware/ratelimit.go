package middleware

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"golang.org/x/time/rate"

	"pdfvault/internal/metrics"
)

// RateLimit enforces a token bucket per client IP. A non-positive rps
// disables limiting and the returned handler just calls the next one.
func RateLimit(rps float64, burst int) fiber.Handler {
	if rps <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	var limiters sync.Map // client ip -> *rate.Limiter

	return func(c *fiber.Ctx) error {
		key := utils.CopyString(c.IP())
		if key == "" {
			key = "unknown"
		}
		v, ok := limiters.Load(key)
		if !ok {
			v, _ = limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), burst))
		}
		if !v.(*rate.Limiter).Allow() {
			metrics.UploadRateLimited.Inc()
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":    false,
				"message":    "too many uploads, retry later",
				"request_id": GetRequestID(c),
				"error":      fiber.Map{"code": "RATE_LIMITED"},
			})
		}
		return c.Next()
	}
}
