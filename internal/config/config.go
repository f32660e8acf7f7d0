// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"NAVCORE_DB_PATH" envDefault:"./data/navcore.db"`
	ServerHost string `env:"NAVCORE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"NAVCORE_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"NAVCORE_ENV" envDefault:"development"`
	LogLevel   string `env:"NAVCORE_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL      string `env:"NAVCORE_REDIS_URL"`                         // Optional Redis URL for widget markup caching
	CachePrefix   string `env:"NAVCORE_CACHE_PREFIX" envDefault:"navcore:"` // Redis key prefix
	CacheTTL      int    `env:"NAVCORE_CACHE_TTL" envDefault:"300"`        // Render cache TTL in seconds
	CacheCapacity int    `env:"NAVCORE_CACHE_CAPACITY" envDefault:"10000"` // Max render cache entries

	// Analytics configuration
	AnalyticsRetentionDays int     `env:"NAVCORE_ANALYTICS_RETENTION_DAYS" envDefault:"90"`
	PerfSampleCap          int     `env:"NAVCORE_PERF_SAMPLE_CAP" envDefault:"1000"` // Render samples kept per menu
	ClickRate              float64 `env:"NAVCORE_CLICK_RATE" envDefault:"100"`       // Click events accepted per second
	ClickBurst             int     `env:"NAVCORE_CLICK_BURST" envDefault:"200"`

	// API rate limiting (per client IP)
	APIRate  float64 `env:"NAVCORE_API_RATE" envDefault:"50"` // Requests per second
	APIBurst int     `env:"NAVCORE_API_BURST" envDefault:"100"`

	// GeoIP configuration
	GeoIPDBPath string `env:"NAVCORE_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// CacheTTLDuration returns the render cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("NAVCORE_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.AnalyticsRetentionDays < 1 {
		return nil, fmt.Errorf("NAVCORE_ANALYTICS_RETENTION_DAYS must be positive, got %d", cfg.AnalyticsRetentionDays)
	}

	return cfg, nil
}
