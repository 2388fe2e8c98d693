package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartlens/backend/config"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
			products.GET("/:barcode", handler.ResolveProduct)
			products.GET("/:barcode/alternatives", handler.GetAlternatives)
		}
		v1.GET("/history", handler.History)
	}

	return router
}
