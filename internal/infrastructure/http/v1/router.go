// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"crosstab/internal/domain/auth"
	"crosstab/internal/domain/runs"
	"crosstab/internal/infrastructure/http/v1/handlers"
	"crosstab/internal/infrastructure/http/v1/middleware"
	"crosstab/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Queue and Runner process webhook jobs in the background
	Queue  handlers.JobQueue
	Runner handlers.JobRunner

	// SecretKey signs platform webhooks
	SecretKey     string
	SkipSignature bool

	// Runs exposes the run journal; JWTValidator protects it. The admin API
	// is disabled when either is nil.
	Runs         *runs.Service
	JWTValidator middleware.JWTValidator

	// DB is checked by the readiness probe when set
	DB handlers.Pinger
	// QueueStats is reported by the readiness probe when set
	QueueStats handlers.QueueStats
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Session())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	baseHandler := handlers.NewBaseHandler()

	healthHandler := handlers.NewHealthHandler(baseHandler, cfg.DB, cfg.QueueStats)
	router.GET("/diagnostics/check", healthHandler.Diagnostics)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	webhookHandler := handlers.NewWebhookHandler(baseHandler, cfg.Queue, cfg.Runner)
	router.POST("/", middleware.Signature(cfg.SecretKey, cfg.SkipSignature), webhookHandler.Handle)

	if cfg.Runs != nil && cfg.JWTValidator != nil {
		v1 := router.Group("/api/v1")
		v1.Use(middleware.Auth(cfg.JWTValidator))
		v1.Use(middleware.RequireRole(auth.RoleAdmin))

		runsHandler := handlers.NewRunsHandler(baseHandler, cfg.Runs)
		runsHandler.RegisterRoutes(v1.Group("/runs"))
	}

	return router
}
