// Command api is the Vantage Portal Data API server.
//
// Usage:
//
//	portal-api
//	API_PORT=8080 portal-api

// @title Vantage Portal Data API
// @version 1.0.0
// @description Player/scout portal backend for a football representation agency: assembled dashboard view-models (normalized bio/highlights, enriched analyses, grade/metric resolution, chart data, resolved training schedules), media upload coordination, and realtime change notifications.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Vantage Management
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/vantagemgmt/portal-data/internal/api"
	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/config"
	"github.com/vantagemgmt/portal-data/internal/db"
	"github.com/vantagemgmt/portal-data/internal/listener"
	"github.com/vantagemgmt/portal-data/internal/maintenance"
	"github.com/vantagemgmt/portal-data/internal/realtime"
	"github.com/vantagemgmt/portal-data/internal/session"
	"github.com/vantagemgmt/portal-data/internal/storage"
	"github.com/vantagemgmt/portal-data/internal/store"
	"github.com/vantagemgmt/portal-data/internal/upload"

	_ "github.com/vantagemgmt/portal-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Data access + session tiers
	st := store.New(pool)
	sessions := session.NewStore(st, cfg.SessionTTL, logger)

	// Media storage client
	if cfg.StorageBaseURL == "" {
		logger.Warn("STORAGE_BASE_URL not set, clip uploads will fail against an empty endpoint")
	}
	media := storage.NewClient(cfg.StorageBaseURL, cfg.StorageToken, cfg.StorageReqsPerMin, logger)

	// Realtime hub for connected portal clients
	hub := realtime.NewHub(logger)

	// Upload coordinator: completed uploads invalidate the dashboard cache
	// and nudge clients to refetch the authoritative highlights list.
	uploads := upload.New(media, st, logger)
	uploads.OnCompleted = func(playerID int64) {
		listener.HandleChange(config.PlayersTable, appCache, hub, logger)
	}
	go uploads.Start(ctx)

	// Start LISTEN/NOTIFY consumer for record-change events
	go listener.Start(ctx, cfg.DatabaseURL, appCache, hub, logger)

	// Start maintenance tickers (invoice sweep, upload prune, identity purge)
	go maintenance.Start(ctx, st, uploads, sessions, maintenance.Config{
		InvoiceSweepInterval: cfg.InvoiceSweepInterval,
		UploadPruneInterval:  cfg.UploadPruneInterval,
		IdentityPurgeWindow:  cfg.IdentityPurgeWindow,
	}, logger)

	// Create router
	router := api.NewRouter(api.Deps{
		Pool:     pool,
		Store:    st,
		Cache:    appCache,
		Sessions: sessions,
		Uploads:  uploads,
		Media:    media,
		Hub:      hub,
		Logger:   logger,
	}, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	// No global read/write timeouts: /ws connections are long-lived and
	// multipart clip uploads can take minutes.
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Vantage Portal Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
