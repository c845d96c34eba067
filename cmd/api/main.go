package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docproc/internal/config"
	"docproc/internal/database"
	"docproc/internal/database/migration"
	"docproc/internal/extract"
	handlers "docproc/internal/http/handler"
	"docproc/internal/http/middleware"
	"docproc/internal/otel"
	"docproc/internal/repository/postgres"
	"docproc/internal/service"
	"docproc/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing (degrades to noop when disabled or the exporter is unreachable)
	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	// PostgreSQL connection (pooled via database/sql over the pgx driver)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// File storage: local upload directory by default, S3-compatible optional
	var store storage.Storage
	switch cfg.StorageBackend {
	case "local":
		store, err = storage.NewLocal(cfg.Upload.Dir)
	case "s3":
		store, err = storage.NewMinIO(cfg.MinIO)
	default:
		log.Fatalf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	// Repositories, background extraction pool, and services
	docRepo := postgres.NewDocumentPostgres(db)
	tagRepo := postgres.NewTagPostgres(db)

	processor := service.NewProcessor(docRepo, store, extract.NewPDF(), cfg.Upload.Workers, prometheus.DefaultRegisterer)
	docSvc := service.NewDocumentService(store, docRepo, tagRepo, processor, cfg.Upload.MaxSize)
	tagSvc := service.NewTagService(docRepo, tagRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave headroom above the upload ceiling; the service enforces the
		// exact limit and answers 413 itself.
		BodyLimit: int(cfg.Upload.MaxSize) + 1<<20,
	})

	// Global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, docSvc, tagSvc)

	// Serve until interrupted, then drain in-flight extractions.
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := app.Shutdown(); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	processor.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}
