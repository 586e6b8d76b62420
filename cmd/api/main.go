package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"docflow/docs"
	"docflow/internal/audit"
	"docflow/internal/config"
	"docflow/internal/database"
	"docflow/internal/database/migration"
	handlers "docflow/internal/http/handler"
	"docflow/internal/http/middleware"
	"docflow/internal/logger"
	"docflow/internal/otel"
	"docflow/internal/repository/postgres"
	"docflow/internal/service"
	"docflow/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Document Flow API
// @version 1.0
// @description Document upload, multi-step validation and download over presigned object storage URLs.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.Location())

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "event", "server_failed", "error_message", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		dsn, err := database.BuildPostgresDSN(cfg.Database)
		if err != nil {
			return err
		}
		if err := migration.EnsureMigrated(dsn, log, cfg.Database.Host); err != nil {
			return err
		}
	}

	objStore, err := newStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	docRepo := postgres.NewDocumentPostgres(db)
	flowRepo := postgres.NewValidationFlowPostgres(db)
	tx := postgres.NewTransactor(db)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditSink(auditSink(cfg.Audit, db, log)),
	}
	policy := service.PolicyFromConfig(cfg.Upload)

	deps := handlers.Dependencies{
		DB:         db,
		Documents:  service.NewDocumentService(objStore, docRepo, opts...),
		Uploads:    service.NewUploadService(objStore, docRepo, tx, policy, opts...),
		Validation: service.NewValidationService(docRepo, flowRepo, tx, opts...),
		Downloads:  service.NewDownloadService(objStore, docRepo, cfg.Upload.PresignedURLExpiry(), opts...),
		Security:   cfg.Security,
		Metrics:    prometheus.DefaultGatherer,
	}

	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(cfg.Location()))
	app.Use(promMw.Handler())

	handlers.RegisterRoutes(app, deps)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server listening", "event", "server_started", "addr", addr, "storage_provider", storage.NormalizeProvider(cfg.Storage.Provider))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "event", "server_shutdown")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// newStorage builds the configured provider, prepares its bucket and wraps
// it with read retries and metrics.
func newStorage(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage.Storage, error) {
	base, err := storage.New(cfg, log)
	if err != nil {
		return nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := storage.Initialize(initCtx, base); err != nil {
		return nil, err
	}

	metrics, err := storage.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return storage.Instrument(storage.WithRetry(base, storage.RetryOptions{}), storage.NormalizeProvider(cfg.Provider), metrics), nil
}

func auditSink(cfg config.AuditConfig, db *sql.DB, log *slog.Logger) audit.Sink {
	if !cfg.Enabled {
		return audit.Nop{}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Sink)) {
	case "log":
		return audit.NewLogSink(log)
	default:
		return audit.NewPostgresSink(db)
	}
}
