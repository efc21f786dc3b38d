package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengaest/estimation-api/docs"
	"github.com/jengaest/estimation-api/internal/auth"
	"github.com/jengaest/estimation-api/internal/config"
	"github.com/jengaest/estimation-api/internal/database"
	"github.com/jengaest/estimation-api/internal/estimator"
	"github.com/jengaest/estimation-api/internal/http/handler"
	"github.com/jengaest/estimation-api/internal/http/middleware"
	"github.com/jengaest/estimation-api/internal/http/router"
	"github.com/jengaest/estimation-api/internal/jobs"
	"github.com/jengaest/estimation-api/internal/logger"
	"github.com/jengaest/estimation-api/internal/repository"
	"github.com/jengaest/estimation-api/internal/service"
	"github.com/jengaest/estimation-api/internal/storage"
	"go.uber.org/zap"
)

// @title Estimation API
// @version 1.0
// @description Construction cost estimation API: quotes, estimates, spreadsheet import and sharing

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// Development reads secrets from the environment; staging and
	// production pull them from Azure Key Vault.
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	archive, err := storage.NewArchive(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	estimateRepo := repository.NewEstimateRepository(db)
	itemRepo := repository.NewEstimateItemRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	shareRepo := repository.NewShareRepository(db)
	projectTypeRepo := repository.NewProjectTypeRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	referenceService := service.NewReferenceService(projectTypeRepo, locationRepo, log)
	quoteService := service.NewQuoteService(referenceService, log)
	estimateService := service.NewEstimateService(estimateRepo, itemRepo, revisionRepo, referenceService, log)
	uploadService := service.NewUploadService(estimateRepo, referenceService, archive, log)
	shareService := service.NewShareService(shareRepo, estimateRepo, cfg, log)

	var geminiClient *estimator.Client
	if cfg.Estimator.Enabled {
		geminiClient = estimator.NewClient(&cfg.Estimator, log)
	}
	aiService := service.NewAIService(geminiClient, cfg.Estimator.Enabled, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	estimateHandler := handler.NewEstimateHandler(estimateService, log)
	uploadHandler := handler.NewUploadHandler(uploadService, &cfg.Storage, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	shareHandler := handler.NewShareHandler(shareService, log)
	referenceHandler := handler.NewReferenceHandler(referenceService, log)
	aiHandler := handler.NewAIHandler(aiService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		estimateHandler,
		uploadHandler,
		quoteHandler,
		shareHandler,
		referenceHandler,
		aiHandler,
	)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	expiryJob := jobs.NewShareExpiryJob(shareService, log, 30*time.Second)
	if err := scheduler.AddJob(jobs.ShareExpiryJobName, cfg.Sharing.CleanupSchedule, expiryJob.Run); err != nil {
		log.Error("failed to register share expiry job", zap.Error(err))
	} else {
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown gracefully", zap.Error(err))
			return err
		}
		log.Info("server stopped gracefully")
	}

	return nil
}
