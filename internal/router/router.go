package router

import (
	"github.com/gin-gonic/gin"

	"labvista/internal/config"
	"labvista/internal/handler"
	"labvista/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.CORSConfig,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Report routes
	reports := v1.Group("/reports")
	reports.POST("", reportH.Upload)
	reports.GET("", reportH.List)
	reports.GET("/:id", reportH.Get)
	reports.GET("/:id/dashboard", reportH.Dashboard)
	reports.GET("/:id/download", reportH.Download)
	reports.GET("/:id/export", reportH.Export)
	reports.DELETE("/:id", reportH.Delete)

	// Trend routes
	v1.GET("/trends/:testKey", reportH.Trends)

	return r
}
