package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/audittrack/audittrack-api/docs" // Swagger docs
	"github.com/audittrack/audittrack-api/internal/config"
	"github.com/audittrack/audittrack-api/internal/database"
	"github.com/audittrack/audittrack-api/internal/handlers"
	"github.com/audittrack/audittrack-api/internal/jobs"
	"github.com/audittrack/audittrack-api/internal/middleware"
	"github.com/audittrack/audittrack-api/internal/repository"
	"github.com/audittrack/audittrack-api/internal/services"
	"github.com/audittrack/audittrack-api/internal/storage"
	"github.com/audittrack/audittrack-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title AuditTrack API
// @version 1.0
// @description REST API for compliance audit tracking

// @host localhost:3001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "dir", cfg.UploadDir)

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, store, cfg)

	// Schedule recurring jobs
	scheduleJobs(worker, store)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, svcs, store, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, svcs *services.Services, store *storage.LocalStorage, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/uploads"})))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Evidence and report downloads
	router.Static("/uploads", store.BasePath())

	api := router.Group("/api")
	{
		// Public routes
		api.GET("/health", h.Health.Index)
		api.POST("/login", h.Auth.Login)

		// The audit views and per-record workflow are open to the
		// plant-floor frontend without a session.
		api.GET("/audits", h.Audit.Index)
		api.GET("/audits/last-upload", h.Audit.LastUpload)
		api.POST("/audits/update", h.Audit.UpdateRecord)
		api.POST("/audits/upload-evidence", h.Audit.UploadEvidence)

		// Admin-only routes
		admin := api.Group("")
		admin.Use(middleware.Auth(svcs.Auth), middleware.RequireAdmin())
		{
			admin.GET("/users", h.User.Index)
			admin.POST("/users", h.User.Create)
			admin.PUT("/users/:id", h.User.Update)
			admin.DELETE("/users/:id", h.User.Delete)

			admin.POST("/audits/upload", h.Audit.Upload)
			admin.GET("/audits/export", h.Audit.Export)
			admin.GET("/audits/report", h.Audit.Report)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, store *storage.LocalStorage) {
	// Sweep orphaned bulk-import temp files every hour
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		removed, err := store.SweepImportTemp(time.Hour)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("[Job] Removed orphaned import files", "count", removed)
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
