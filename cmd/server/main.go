package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"rental-inspection-backend/internal/compress"
	"rental-inspection-backend/internal/config"
	"rental-inspection-backend/internal/database"
	"rental-inspection-backend/internal/handlers"
	"rental-inspection-backend/internal/logging"
	"rental-inspection-backend/internal/middleware"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/notify"
	"rental-inspection-backend/internal/reports"
	"rental-inspection-backend/internal/retry"
	"rental-inspection-backend/internal/services"
	"rental-inspection-backend/internal/session"
	"rental-inspection-backend/internal/submission"
	"rental-inspection-backend/internal/supabase"
)

// recordStore is what both the direct database client and the REST client
// provide.
type recordStore interface {
	reports.RecordStore
	InsertPhotoRecord(ctx context.Context, record models.UploadedPhotoRecord) error
	ListPhotoRecords(ctx context.Context, orderID, merchantID string) ([]models.UploadedPhotoRecord, error)
	GetMerchantConfig(ctx context.Context, merchantID string) (*models.MerchantConfig, error)
}

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Init(cfg.LogLevel, !cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Record store: direct Postgres when DATABASE_URL is set, otherwise the
	// Supabase REST API.
	var records recordStore
	var db handlers.Pinger
	if cfg.DatabaseURL != "" {
		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize database client")
		}
		defer dbClient.Close()

		migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize migrator")
		} else {
			if err := migrator.Run(ctx); err != nil {
				logger.Warn().Err(err).Msg("Migration failed")
			} else {
				logger.Info().Msg("Migrations completed successfully")
			}
			migrator.Close()
		}

		records = dbClient
		db = dbClient
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using the Supabase REST API. Migrations will be skipped.")
		restClient, err := supabase.NewRestClient(cfg.SupabaseURL, cfg.SupabasePublishableKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Supabase client")
		}
		records = restClient
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage client")
	}

	reportStore := reports.NewStore(records, component(logger, "reports"))
	compressor := compress.NewCompressor(compress.NewJPEGEncoder(), nil, cfg.MaxInputBytes, component(logger, "compress"))
	uploader := services.NewStorageService(storageClient, records, retry.Policy{
		MaxAttempts:    cfg.UploadMaxAttempts,
		AttemptTimeout: cfg.UploadAttemptTimeout,
		BackoffUnit:    cfg.UploadBackoffUnit,
	}, component(logger, "storage"))
	notifier := notify.NewWebhookNotifier(cfg.NotifyWebhookURL, cfg.NotifyTimeout)

	submissionLogger := component(logger, "submission")
	registry := session.NewRegistry(cfg.SessionTTL, cfg.MaxPhotos, func() *submission.Orchestrator {
		return submission.NewOrchestrator(reportStore, compressor, uploader, notifier, submissionLogger)
	}, component(logger, "sessions")).WithMaxPhotoBytes(cfg.MaxInputBytes)
	go registry.Run(ctx, time.Minute)

	healthHandler := handlers.NewHealthHandler(db)
	sessionsHandler := handlers.NewSessionsHandler(registry, component(logger, "sessions"))
	merchantsHandler := handlers.NewMerchantsHandler(records, records, storageClient.GetPublicURL, component(logger, "merchants"))

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestLogger(component(logger, "http")))
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api/v1")

	// Inspection wizard
	api.POST("/sessions", sessionsHandler.CreateSession)
	api.GET("/sessions/:session_id", sessionsHandler.GetSession)
	api.PUT("/sessions/:session_id/language", sessionsHandler.SetLanguage)
	api.POST("/sessions/:session_id/photos", sessionsHandler.AddPhotos)
	api.DELETE("/sessions/:session_id/photos/:index", sessionsHandler.RemovePhoto)
	api.POST("/sessions/:session_id/submit", sessionsHandler.Submit)
	api.POST("/sessions/:session_id/reset", sessionsHandler.ResetSession)

	// Merchant pages
	api.GET("/merchants/:merchant_id/config", merchantsHandler.GetConfig)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	protected.GET("/merchants/:merchant_id/reports/:order_id", merchantsHandler.GetReport)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

func component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
