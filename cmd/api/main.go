package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"verify-proxy/internal/config"
	"verify-proxy/internal/handler"
	"verify-proxy/internal/observability"
	"verify-proxy/internal/queue"
	"verify-proxy/internal/ratelimit"
	"verify-proxy/internal/service"
	"verify-proxy/internal/transport"
	"verify-proxy/internal/verifier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	upstream, err := verifier.NewUpstreamVerifier(cfg.UpstreamURL, cfg.VerifyTimeout())
	if err != nil {
		logger.Fatal("upstream verifier initialization failed", zap.Error(err))
	}

	pacer := ratelimit.NewDelayPacer(cfg.RateLimitDelay())

	q, err := queue.New(upstream, pacer, metrics, logger)
	if err != nil {
		logger.Fatal("queue initialization failed", zap.Error(err))
	}

	verificationService, err := service.NewVerificationService(q, cfg.BatchSize, cfg.MaxBatchEmails, metrics, logger)
	if err != nil {
		logger.Fatal("verification service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:               handler.ServiceName,
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(transport.RequestCorrelation())
	app.Use(metrics.HTTPMiddleware())
	app.Use(transport.InboundRateLimit(cfg.InboundRatePerSec))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, q)
	if err := handler.RegisterVerifyRoutes(app, verificationService); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	coordinator, err := service.NewShutdownCoordinator(q, app, cfg.ShutdownPollInterval(), logger)
	if err != nil {
		logger.Fatal("shutdown coordinator initialization failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("verify-proxy started",
		zap.Int("port", cfg.Port),
		zap.Int("verifyTimeoutMs", cfg.VerifyTimeoutMillis),
		zap.Int("rateLimitDelayMs", cfg.RateLimitDelayMillis),
		zap.Int("batchSize", cfg.BatchSize),
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			return fmt.Errorf("server listen failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return coordinator.Run(groupCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}

	logger.Info("verify-proxy stopped")
}
