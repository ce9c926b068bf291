package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"pdfvault/internal/http/middleware"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the success envelope of /health.
type HealthResponse struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"service healthy"`
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status" example:"healthy"`
}

// HealthCheck godoc
// @Summary      Dependency health
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /health [get]
func HealthCheck(p Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.JSON(HealthResponse{
			Success:   true,
			Message:   "service healthy",
			RequestID: middleware.GetRequestID(c),
			Status:    "healthy",
		})
	}
}

// LivenessProbe godoc
// @Summary      Liveness
// @Tags         health
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Router       /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(MessageResponse{
			Success:   true,
			Message:   "alive",
			RequestID: middleware.GetRequestID(c),
		})
	}
}
