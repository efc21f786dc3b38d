package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jengaest/estimation-api/internal/auth"
	"github.com/jengaest/estimation-api/internal/config"
	"github.com/jengaest/estimation-api/internal/database"
	"github.com/jengaest/estimation-api/internal/http/handler"
	"github.com/jengaest/estimation-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/jengaest/estimation-api/docs" // swagger docs registration
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	estimateHandler  *handler.EstimateHandler
	uploadHandler    *handler.UploadHandler
	quoteHandler     *handler.QuoteHandler
	shareHandler     *handler.ShareHandler
	referenceHandler *handler.ReferenceHandler
	aiHandler        *handler.AIHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	estimateHandler *handler.EstimateHandler,
	uploadHandler *handler.UploadHandler,
	quoteHandler *handler.QuoteHandler,
	shareHandler *handler.ShareHandler,
	referenceHandler *handler.ReferenceHandler,
	aiHandler *handler.AIHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		estimateHandler:  estimateHandler,
		uploadHandler:    uploadHandler,
		quoteHandler:     quoteHandler,
		shareHandler:     shareHandler,
		referenceHandler: referenceHandler,
		aiHandler:        aiHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness: the API is ready once the database answers
	dbHealth := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"service": "database",
				"error":   err.Error(),
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
		})
	}
	r.Get("/health/db", dbHealth)
	r.Get("/health/ready", dbHealth)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Share links work without authentication
		r.Get("/shared/{token}", rt.shareHandler.GetShared)
		r.Get("/estimates/shared/{token}", rt.shareHandler.GetShared)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Reference data
			r.Get("/project-types", rt.referenceHandler.ListProjectTypes)
			r.Get("/locations", rt.referenceHandler.ListLocations)

			// Estimates
			r.Route("/estimates", func(r chi.Router) {
				r.Get("/", rt.estimateHandler.List)
				r.Post("/", rt.estimateHandler.Create)
				r.Get("/summaries", rt.estimateHandler.Summaries)
				r.Get("/statistics", rt.estimateHandler.Statistics)
				r.Post("/upload", rt.uploadHandler.Upload)

				// Interactive quotes
				r.Post("/calculate", rt.quoteHandler.Calculate)

				// AI suggestions
				r.Post("/ai-suggest", rt.aiHandler.Suggest)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", rt.estimateHandler.GetByID)
					r.Put("/", rt.estimateHandler.Update)
					r.Patch("/", rt.estimateHandler.Update)
					r.Delete("/", rt.estimateHandler.Delete)
					r.Post("/duplicate", rt.estimateHandler.Duplicate)
					r.Get("/revisions", rt.estimateHandler.Revisions)
					r.Get("/export", rt.estimateHandler.Export)

					r.Route("/items", func(r chi.Router) {
						r.Post("/", rt.estimateHandler.AddItem)
						r.Put("/{itemId}", rt.estimateHandler.UpdateItem)
						r.Delete("/{itemId}", rt.estimateHandler.DeleteItem)
					})

					r.Route("/shares", func(r chi.Router) {
						r.Get("/", rt.shareHandler.List)
						r.Post("/", rt.shareHandler.Create)
						r.Delete("/{shareId}", rt.shareHandler.Revoke)
					})
				})
			})
		})
	})

	return r
}
