package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/schoolfee-receipts/internal/application/service"
	"github.com/sangkips/schoolfee-receipts/internal/config"
	"github.com/sangkips/schoolfee-receipts/internal/infrastructure/cache"
	"github.com/sangkips/schoolfee-receipts/internal/infrastructure/database"
	"github.com/sangkips/schoolfee-receipts/internal/infrastructure/repository"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/handler"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/middleware"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/routes"
	"github.com/sangkips/schoolfee-receipts/pkg/format"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
)

func main() {
	// Load configuration
	cfg, warnings := config.Load()

	log, err := logger.NewLogger(cfg.App.LogLevel)
	if err != nil {
		log = logger.L
		log.Warnw("invalid LOG_LEVEL, using info", "level", cfg.App.LogLevel, "error", err)
	}
	logger.L = log
	defer func() { _ = log.Sync() }()

	for _, w := range warnings {
		log.Warn(w)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	if err := database.SeedDefaultData(db, service.ReceiptNumberFloor); err != nil {
		log.Warnw("failed to seed receipt sequence", "error", err)
	}

	// Initialize repositories
	receiptRepo := repository.NewReceiptRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Rendered documents are cached; a broken redis falls back to memory
	documentCache, err := cache.NewFromConfig(&cfg.Cache)
	if err != nil {
		log.Warnw("failed to initialize document cache, using memory", "driver", cfg.Cache.Driver, "error", err)
		documentCache = cache.NewMemoryCache(cfg.Cache.TTL)
	}

	// Initialize receipt renderer
	engine, err := newEngine(&cfg.Render, log)
	if err != nil {
		log.Fatalw("failed to initialize render engine", "engine", cfg.Render.Engine, "error", err)
	}
	log.Infow("render engine ready", "engine", engine.Name(), "format", engine.Format())

	location := format.Location(cfg.School.Timezone)

	// Initialize services
	sequencer := service.NewSequencer(receiptRepo, sequenceRepo, log)
	receiptService := service.NewReceiptService(receiptRepo, sequencer, log)
	renderService := service.NewRenderService(receiptRepo, engine, documentCache, service.RenderSettings{
		Institution: cfg.School.Name,
		Location:    location,
	}, log)
	exportService := service.NewExportService(receiptRepo, location)

	handlers := &routes.Handlers{
		Receipt: handler.NewReceiptHandler(receiptService, renderService, exportService),
	}

	rateLimiter := middleware.NewClientRateLimiter(
		middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration),
	)
	defer rateLimiter.Stop()

	go middleware.PurgeExpiredKeys(ctx, idempotencyRepo, time.Hour, log)

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Log:             log,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Renderer:        renderService,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Infow("starting server", "service", cfg.App.Name, "port", port, "env", cfg.App.Env)

	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(":" + port) }()

	select {
	case err := <-errCh:
		log.Fatalw("server stopped", "error", err)
	case <-ctx.Done():
		log.Info("shutting down")
	}
}
