// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/sellerhub/navcore/internal/cache"
	"github.com/sellerhub/navcore/internal/config"
	"github.com/sellerhub/navcore/internal/geoip"
	"github.com/sellerhub/navcore/internal/handler/api"
	"github.com/sellerhub/navcore/internal/middleware"
	"github.com/sellerhub/navcore/internal/scheduler"
	"github.com/sellerhub/navcore/internal/service"
	"github.com/sellerhub/navcore/internal/store"
	"github.com/sellerhub/navcore/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "navcore - Navigation resolution and analytics engine\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NAVCORE_DB_PATH                   SQLite database path (default: ./data/navcore.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NAVCORE_SERVER_PORT               Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NAVCORE_ENV                       Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NAVCORE_REDIS_URL                 Redis URL for widget markup caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NAVCORE_CACHE_TTL                 Render cache TTL in seconds (default: 300)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NAVCORE_ANALYTICS_RETENTION_DAYS  Click event retention (default: 90)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NAVCORE_GEOIP_DB_PATH             GeoLite2-Country.mmdb path (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Println(version.Info{
			Version:   appVersion,
			GitCommit: appGitCommit,
			BuildTime: appBuildTime,
		})
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	st := store.New(db)

	// GeoIP lookup is optional; without a database clicks stay uncountried.
	geo, err := geoip.NewLookup(cfg.GeoIPDBPath)
	if err != nil {
		return fmt.Errorf("opening geoip database: %w", err)
	}
	defer func() { _ = geo.Close() }()
	if geo.IsEnabled() {
		slog.Info("geoip lookup enabled", "path", cfg.GeoIPDBPath)
	}

	// Render cache holds filtered trees in memory; widget markup can
	// additionally go through Redis when configured.
	renderCache := cache.NewRenderCache(cfg.CacheTTLDuration(), cfg.CacheCapacity, time.Now)

	var markup cache.Cacher
	if cfg.UseRedisCache() {
		markup, err = cache.NewRedisCache(cfg.RedisURL, cfg.CachePrefix, cfg.CacheTTLDuration())
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		slog.Info("widget markup cache using redis")
	} else {
		markup = cache.NewMemoryCache(cache.MemoryCacheOptions{
			DefaultTTL: cfg.CacheTTLDuration(),
			Capacity:   cfg.CacheCapacity,
		})
	}
	defer func() { _ = markup.Close() }()

	analytics := service.NewAnalyticsService(st, geo, logger, service.AnalyticsOptions{
		RetentionDays: cfg.AnalyticsRetentionDays,
		PerfSampleCap: cfg.PerfSampleCap,
		ClickRate:     cfg.ClickRate,
		ClickBurst:    cfg.ClickBurst,
	})
	defer analytics.Close()

	resolver := service.NewResolver(st)
	trees := service.NewTreeService(st, nil, logger)
	nav := service.NewNavigationService(resolver, trees, renderCache, analytics, logger)
	widgets := service.NewWidgetService(st, nav, markup, logger, cfg.CacheTTLDuration())

	// Tree mutations must drop both the render cache and widget markup.
	trees.SetInvalidator(service.Invalidators{renderCache, widgets})

	sched := scheduler.New(analytics, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(st, trees, nav, analytics, widgets, renderCache, versionInfo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	if cfg.IsDevelopment() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", apiHandler.Health)

	rateLimiter := middleware.NewRateLimiter(cfg.APIRate, cfg.APIBurst, logger)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimiter.Middleware())
		r.Get("/status", apiHandler.Status)

		// Menu management
		r.Get("/menus", apiHandler.ListMenus)
		r.Post("/menus", apiHandler.CreateMenu)
		r.Get("/menus/{id}", apiHandler.GetMenu)
		r.Put("/menus/{id}", apiHandler.UpdateMenu)
		r.Delete("/menus/{id}", apiHandler.DeleteMenu)
		r.Get("/menus/{id}/tree", apiHandler.GetMenuTree)
		r.Post("/menus/{id}/nodes", apiHandler.CreateNode)
		r.Post("/menus/{id}/reorder", apiHandler.ReorderMenu)
		r.Put("/nodes/{id}", apiHandler.UpdateNode)
		r.Delete("/nodes/{id}", apiHandler.DeleteNode)

		// Navigation resolution
		r.Get("/resolve", apiHandler.Resolve)
		r.Get("/menus/{id}/view", apiHandler.ViewMenuTree)

		// Locations
		r.Get("/locations", apiHandler.ListLocations)
		r.Post("/locations", apiHandler.CreateLocation)
		r.Put("/locations/{id}", apiHandler.UpdateLocation)
		r.Delete("/locations/{id}", apiHandler.DeleteLocation)

		// Widgets
		r.Get("/widgets", apiHandler.ListWidgets)
		r.Post("/widgets", apiHandler.CreateWidget)
		r.Get("/widgets/{id}", apiHandler.GetWidget)
		r.Put("/widgets/{id}", apiHandler.UpdateWidget)
		r.Delete("/widgets/{id}", apiHandler.DeleteWidget)
		r.Get("/widgets/{id}/render", apiHandler.RenderWidget)

		// Analytics
		r.Post("/menus/{id}/clicks", apiHandler.RecordClick)
		r.Get("/menus/{id}/analytics", apiHandler.GetAnalytics)
		r.Get("/menus/{id}/performance", apiHandler.GetPerformance)

		// Cache management
		r.Get("/cache/stats", apiHandler.CacheStats)
		r.Post("/cache/clear", apiHandler.CacheClear)
		r.Post("/cache/warm", apiHandler.CacheWarm)
	})
	slog.Info("REST API v1 mounted at /api/v1")

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
