package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/regions"
	"github.com/harel-coffee/ClimWIP-auto/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(pipeline *usecase.Pipeline, catalog *regions.Catalog, regionDir string) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(pipeline, catalog, regionDir)

	// API v1 routes.
	v1 := router.Group("/v1")
	// Diagnostic computation.
	v1.POST("/diagnostics", handler.ComputeDiagnostic)

	// Named regions.
	v1.GET("/regions", handler.GetRegions)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
