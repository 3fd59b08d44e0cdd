// Package main is the entry point for the LCZ chart server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lcz-viz/server/internal/api"
	"github.com/lcz-viz/server/internal/cache"
	"github.com/lcz-viz/server/internal/config"
	"github.com/lcz-viz/server/internal/render"
	"github.com/lcz-viz/server/internal/service"
	"github.com/lcz-viz/server/pkg/lcz"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/server.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting LCZ chart server on port %d", cfg.Server.Port)

	// Initialize cache manager (shared across all schemes)
	cacheManager, err := cache.NewManager(cache.Config{
		ChartCacheSizeMB: cfg.Cache.ChartSizeMB,
		ChartTTL:         time.Duration(cfg.Cache.ChartTTLMinutes) * time.Minute,
		QueryCacheSize:   cfg.Cache.QueryCacheSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	// Initialize chart renderer (shared across all schemes)
	chartRenderer := render.NewChartRenderer(render.Style{
		WidthPx:     cfg.Render.WidthPx,
		HeightPx:    cfg.Render.HeightPx,
		PointRadius: cfg.Render.PointRadius,
		FontSize:    cfg.Render.FontSize,
	})

	// Initialize scheme registry
	schemeIDs := cfg.Schemes.SchemeIDs()
	registry := api.NewSchemeRegistry(cfg.Schemes.DefaultScheme, schemeIDs, cfg.Server.Title)

	log.Printf("Initializing %d scheme(s), default: %s", len(schemeIDs), cfg.Schemes.DefaultScheme)

	// Initialize each scheme
	for _, schemeID := range schemeIDs {
		sc := cfg.Schemes.Schemes[schemeID]

		table, err := lcz.LoadReferenceTable(sc.TablePath)
		if err != nil {
			log.Fatalf("Failed to load reference table for scheme %q: %v", schemeID, err)
		}
		palette, err := lcz.LoadPalette(sc.PalettePath)
		if err != nil {
			log.Fatalf("Failed to load palette for scheme %q: %v", schemeID, err)
		}

		log.Printf("  [%s] Classes: %d, palette entries: %d", schemeID, table.Len(), len(palette))

		chartService := service.NewChartService(service.ChartServiceConfig{
			SchemeID: schemeID,
			Table:    table,
			Palette:  palette,
			Cache:    cacheManager,
			Renderer: chartRenderer,
		})
		registry.Register(schemeID, chartService)
	}

	// Set up HTTP router
	router := api.NewRouter(api.RouterConfig{
		Registry:    registry,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := cacheManager.Close(); err != nil {
		log.Printf("Failed to close cache: %v", err)
	}

	log.Println("Server stopped")
}
