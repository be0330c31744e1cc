// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Security.TokenTTL != 24*time.Hour {
		t.Errorf("Security.TokenTTL = %v, want 24h", cfg.Security.TokenTTL)
	}
	if cfg.API.DefaultPageSize != 10 {
		t.Errorf("API.DefaultPageSize = %d, want 10", cfg.API.DefaultPageSize)
	}
	if cfg.Analytics.Schedule != "0 0 * * *" {
		t.Errorf("Analytics.Schedule = %q, want midnight", cfg.Analytics.Schedule)
	}
	if cfg.Analytics.Timezone != "Etc/UTC" {
		t.Errorf("Analytics.Timezone = %q, want Etc/UTC", cfg.Analytics.Timezone)
	}
	if !cfg.Analytics.Transactional {
		t.Error("Analytics.Transactional should be true by default")
	}
	if cfg.Analytics.SkipAggregatedWindows {
		t.Error("Analytics.SkipAggregatedWindows should be false by default")
	}
	if cfg.ReadTracking.Sink != ReadSinkDatabase {
		t.Errorf("ReadTracking.Sink = %q, want database", cfg.ReadTracking.Sink)
	}
	if cfg.Events.Enabled {
		t.Error("Events.Enabled should be false by default")
	}
}

func TestLoadWithKoanf_RequiresSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is unset")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("error should mention JWT_SECRET, got %v", err)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ANALYTICS_SKIP_AGGREGATED_WINDOWS", "true")
	t.Setenv("READ_QUEUE_SIZE", "64")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.Security.TokenTTL != 2*time.Hour {
		t.Errorf("Security.TokenTTL = %v, want 2h", cfg.Security.TokenTTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
	if !cfg.Analytics.SkipAggregatedWindows {
		t.Error("Analytics.SkipAggregatedWindows should be true from env")
	}
	if cfg.ReadTracking.QueueSize != 64 {
		t.Errorf("ReadTracking.QueueSize = %d, want 64", cfg.ReadTracking.QueueSize)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
security:
  jwt_secret: "` + testSecret + `"
analytics:
  run_on_start: true
  transactional: false
events:
  enabled: true
  transport: gochannel
read_tracking:
  sink: events
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Analytics.RunOnStart || cfg.Analytics.Transactional {
		t.Errorf("Analytics = %+v, want run_on_start=true transactional=false", cfg.Analytics)
	}
	if cfg.ReadTracking.Sink != ReadSinkEvents {
		t.Errorf("ReadTracking.Sink = %q, want events", cfg.ReadTracking.Sink)
	}
	// Untouched sections keep their defaults.
	if cfg.Analytics.Schedule != "0 0 * * *" {
		t.Errorf("Analytics.Schedule = %q, want default", cfg.Analytics.Schedule)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"JWT_SECRET", "security.jwt_secret"},
		{"DUCKDB_PATH", "database.path"},
		{"HTTP_PORT", "server.port"},
		{"NATS_URL", "events.nats_url"},
		{"ANALYTICS_TIMEZONE", "analytics.timezone"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	if got := s.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:3000", got)
	}
}
