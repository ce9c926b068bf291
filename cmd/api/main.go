package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"pdfvault/internal/config"
	handlers "pdfvault/internal/http/handler"
	"pdfvault/internal/http/middleware"
	"pdfvault/internal/logging"
	"pdfvault/internal/metrics"
	"pdfvault/internal/otel"
	"pdfvault/internal/service"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	// multipartOverhead leaves room for boundaries and part headers around the file.
	multipartOverhead = 1 << 20
)

// @title PDF Vault API
// @version 1.0
// @description Upload, list, download and delete PDF documents.
// @BasePath /
func main() {
	cfg := config.Load()
	loc := logging.LoadLocation(cfg.Timezone)
	logger := logging.New(os.Stdout, cfg.LogLevel, loc)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	shutdownTracing, err := otel.Init(startCtx, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	blobs, blobCloser, err := openBlobs(cfg.Storage, cfg.MinIO, logger)
	if err != nil {
		return err
	}
	if blobCloser != nil {
		defer func() {
			if err := blobCloser.Close(); err != nil {
				logger.Warn("blob store close failed", "error", err)
			}
		}()
	}

	repo, err := openRepo(startCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("metadata store close failed", "error", err)
		}
	}()

	docSvc := service.NewDocumentService(blobs, repo, service.Options{
		MaxUploadSize: cfg.Upload.MaxSize,
		Logger:        logger,
	})

	if err := metrics.RegisterCollectors(prometheus.DefaultRegisterer); err != nil {
		return err
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:      "pdfvault",
		BodyLimit:    int(cfg.Upload.MaxSize) + multipartOverhead,
		ErrorHandler: handlers.ErrorHandler(),
	})
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigin,
		ExposeHeaders: "Content-Disposition, " + middleware.RequestIDHeader,
	}))

	handlers.RegisterRoutes(app, repo, docSvc, handlers.RouteOptions{
		UploadRateLimitRPS:   cfg.Upload.RateLimitRPS,
		UploadRateLimitBurst: cfg.Upload.RateLimitBurst,
		SwaggerHost:          cfg.AppHost,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", ":"+cfg.Port,
			"blob_driver", cfg.Storage.BlobDriver,
			"metadata_driver", cfg.Storage.MetadataDriver,
			"max_upload_size", cfg.Upload.MaxSize,
		)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	var serveErr error
	select {
	case serveErr = <-listenErr:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		serveErr = app.ShutdownWithTimeout(shutdownTimeout)
	}

	logger.Info("server stopped")
	return serveErr
}
