// Package main provides the climate diagnostics HTTP server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/cache"
	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/ncio"
	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/regions"
	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/regrid"
	"github.com/harel-coffee/ClimWIP-auto/internal/config"
	httpHandler "github.com/harel-coffee/ClimWIP-auto/internal/http"
	"github.com/harel-coffee/ClimWIP-auto/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("climdiag-server version %s\n", version)
		return
	}

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("starting diagnostics server",
		"port", cfg.Port,
		"output_dir", cfg.OutputDir,
		"region_dir", cfg.RegionDir)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", cfg.OutputDir, "error", err)
		os.Exit(1)
	}

	// Initialize adapters.
	grids := ncio.NewStore()
	remapper := regrid.NewRemapper()
	catalog := regions.DefaultCatalog()
	store := cache.NewStore(cfg.OutputDir)

	// Land/sea mask is loaded lazily on first ocean-masked request.
	land := regions.NewLandMask(grids, cfg.LandMaskPath, cfg.LandMaskVar)
	logger.Info("land/sea mask configured", "path", cfg.LandMaskPath, "variable", cfg.LandMaskVar)

	// Initialize pipeline.
	pipeline := usecase.NewPipeline(grids, remapper, catalog, land, store, nil, logger)

	// Setup router.
	router := httpHandler.SetupRouter(pipeline, catalog, cfg.RegionDir)

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server listening", "addr", addr)
	logger.Info("endpoints registered",
		"health", "GET /health",
		"regions", "GET /v1/regions",
		"diagnostics", "POST /v1/diagnostics")

	if err := router.Run(addr); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Climate Diagnostics Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  climdiag-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  CLIMDIAG_PORT             Server port (default: 8080)")
	fmt.Println("  CLIMDIAG_OUTPUT_DIR       Directory for computed diagnostics (default: ./data/diagnostics)")
	fmt.Println("  CLIMDIAG_REGION_DIR       Directory holding region corner files (default: ./data/regions)")
	fmt.Println("  CLIMDIAG_LAND_MASK_PATH   NetCDF land/sea mask on the fixed grid")
	fmt.Println("  CLIMDIAG_LAND_MASK_VAR    Mask variable name (default: mask)")
	fmt.Println("  CLIMDIAG_LOG_LEVEL        debug, info, warn, or error (default: info)")
	fmt.Println("  CORS_ALLOWED_ORIGINS      Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  climdiag-server")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  CLIMDIAG_PORT=3000 climdiag-server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health            Health check")
	fmt.Println("  GET  /v1/regions        List named regions")
	fmt.Println("  POST /v1/diagnostics    Compute a diagnostic")
	fmt.Println()
}
