// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/navcore.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/navcore.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("CacheTTL = %d, want %d", cfg.CacheTTL, 300)
	}
	if cfg.CacheCapacity != 10000 {
		t.Errorf("CacheCapacity = %d, want %d", cfg.CacheCapacity, 10000)
	}
	if cfg.AnalyticsRetentionDays != 90 {
		t.Errorf("AnalyticsRetentionDays = %d, want %d", cfg.AnalyticsRetentionDays, 90)
	}
	if cfg.ClickRate != 100 {
		t.Errorf("ClickRate = %v, want %v", cfg.ClickRate, 100.0)
	}
	if cfg.ClickBurst != 200 {
		t.Errorf("ClickBurst = %d, want %d", cfg.ClickBurst, 200)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without NAVCORE_REDIS_URL")
	}
	if cfg.GeoIPEnabled() {
		t.Error("GeoIPEnabled() = true without NAVCORE_GEOIP_DB_PATH")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "NAVCORE_DB_PATH", "/custom/nav.db")
	setEnv(t, "NAVCORE_SERVER_HOST", "0.0.0.0")
	setEnv(t, "NAVCORE_SERVER_PORT", "3000")
	setEnv(t, "NAVCORE_ENV", "production")
	setEnv(t, "NAVCORE_LOG_LEVEL", "debug")
	setEnv(t, "NAVCORE_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "NAVCORE_CACHE_TTL", "60")
	setEnv(t, "NAVCORE_GEOIP_DB_PATH", "/data/GeoLite2-Country.mmdb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/nav.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/nav.db")
	}
	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 3000)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true with NAVCORE_ENV=production")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with NAVCORE_REDIS_URL set")
	}
	if got := cfg.CacheTTLDuration(); got != 60*time.Second {
		t.Errorf("CacheTTLDuration() = %v, want %v", got, 60*time.Second)
	}
	if !cfg.GeoIPEnabled() {
		t.Error("GeoIPEnabled() = false with NAVCORE_GEOIP_DB_PATH set")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"too_large", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "NAVCORE_SERVER_PORT", tt.port)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail with port %s", tt.port)
			}
		})
	}
}

func TestLoad_InvalidRetention(t *testing.T) {
	os.Clearenv()
	setEnv(t, "NAVCORE_ANALYTICS_RETENTION_DAYS", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail with zero retention")
	}
}

func TestServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "example.com", ServerPort: 9090}
	if got := cfg.ServerAddr(); got != "example.com:9090" {
		t.Errorf("ServerAddr() = %q, want %q", got, "example.com:9090")
	}
}
