package http

import (
	"github.com/farmstand/backend/config"
	"github.com/farmstand/backend/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router. m may be nil to
// disable the metrics middleware and endpoint.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger, m *metrics.Metrics) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware. Recovery sits inside logging and metrics so panics
	// are still logged and counted as 500s.
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	if m != nil {
		router.Use(MetricsMiddleware(m))
	}
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if m != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		recipes := v1.Group("/recipes")
		{
			recipes.POST("/generate", handler.GenerateRecipe)
			recipes.POST("/parse", handler.ParseRecipe)
		}

		v1.POST("/estimates", handler.EstimatePrices)
		v1.GET("/listings", handler.BrowseListings)
	}

	return router
}
