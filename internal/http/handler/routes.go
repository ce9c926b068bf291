package handler

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdfvault/docs"
	"pdfvault/internal/http/middleware"
	"pdfvault/internal/service"
)

// RouteOptions configures optional parts of the HTTP surface.
type RouteOptions struct {
	// Gatherer backs /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// UploadRateLimitRPS <= 0 disables upload rate limiting.
	UploadRateLimitRPS   float64
	UploadRateLimitBurst int
	// SwaggerHost is advertised by the API docs when a request carries no Host header.
	SwaggerHost string
}

// RegisterRoutes attaches every HTTP route to app.
func RegisterRoutes(app *fiber.App, pinger Pinger, docSvc service.DocumentService, opts RouteOptions) {
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Get("/health", HealthCheck(pinger))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", swaggerUI(opts.SwaggerHost))

	app.Get("/documents", ListDocuments(docSvc))
	app.Post("/documents", middleware.RateLimit(opts.UploadRateLimitRPS, opts.UploadRateLimitBurst), UploadDocument(docSvc))
	app.Get("/documents/:id", DownloadDocument(docSvc))
	app.Get("/documents/:id/metadata", GetDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
}

// swaggerMu serialises writes to the shared docs.SwaggerInfo.
var swaggerMu sync.Mutex

// swaggerUI serves the API docs with the host and scheme the client used.
func swaggerUI(defaultHost string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		host := c.Get(fiber.HeaderHost)
		if host == "" {
			host = defaultHost
		}

		swaggerMu.Lock()
		defer swaggerMu.Unlock()
		// Header values alias request buffers; the docs outlive the request.
		docs.SwaggerInfo.Host = utils.CopyString(host)
		docs.SwaggerInfo.Schemes = []string{utils.CopyString(scheme)}
		return swagger.HandlerDefault(c)
	}
}
