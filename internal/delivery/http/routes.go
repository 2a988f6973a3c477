package http

import (
	"github.com/gin-gonic/gin"

	"github.com/thefledgedhurricane/journal-quality-analyzer/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}
	{
		journals := v1.Group("/journals")
		{
			journals.GET("/match", handler.MatchJournals)
			journals.POST("/resolve", handler.ResolveJournals)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", handler.ListCategories)
			categories.POST("/analyze", handler.AnalyzeCategory)
		}
	}

	return router
}
