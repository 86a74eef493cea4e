package server

import (
	"github.com/gin-gonic/gin"

	"github.com/tayloree/foodcat/internal/config"
)

// SetupRouter configures all routes and middleware.
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	if cfg.Server.RequestsPerMinute > 0 {
		router.Use(RateLimitMiddleware(cfg.Server.RequestsPerMinute))
	}

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/categorize", handler.Categorize)
		v1.GET("/catalogs", handler.Catalogs)
		v1.GET("/offers", handler.StoredOffers)
	}

	return router
}
