// Package router provides website insight service routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/webinsight/internal/webinsight/handler"
	"github.com/kart-io/webinsight/pkg/middleware"
)

// Config controls route registration.
type Config struct {
	// APISecret is the static bearer token protecting the analysis and
	// query endpoints. Empty disables authentication.
	APISecret string
}

// Register registers middleware and routes on the engine.
func Register(engine *gin.Engine, insightHandler *handler.InsightHandler, cfg Config) {
	logger.Info("Registering routes...")

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	api := engine.Group("/api")
	{
		// Health stays open so probes work without credentials.
		api.GET("/health", insightHandler.Health)

		protected := api.Group("")
		protected.Use(middleware.BearerAuth(cfg.APISecret))
		{
			protected.POST("/insights", insightHandler.Insights)
			protected.POST("/query", insightHandler.Query)
		}
	}

	logger.Info("HTTP routes registered")
}
