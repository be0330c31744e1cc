// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/quill/config.yaml",
	"/etc/quill/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the configuration defaults. They are loaded first
// and overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/quill.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenTTL:          24 * time.Hour,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			LoginRateLimit:    1,
			LoginBurst:        5,
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Analytics: AnalyticsConfig{
			Enabled:               true,
			Schedule:              "0 0 * * *",
			Timezone:              "Etc/UTC",
			RunOnStart:            false,
			Transactional:         true,
			SkipAggregatedWindows: false,
		},
		ReadTracking: ReadTrackingConfig{
			QueueSize:    1024,
			WriteTimeout: 5 * time.Second,
			Sink:         ReadSinkDatabase,
		},
		Events: EventsConfig{
			Enabled:        false,
			Transport:      TransportGoChannel,
			Topic:          "article.reads",
			NATSURL:        "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			StoreDir:       "/data/nats",
			StreamName:     "ARTICLE_READS",
			DurableName:    "read-log-writer",
			QueueGroup:     "read-log-writers",
			BufferSize:     256,
			CircuitBreaker: CircuitBreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, the config file and the
// environment, in that order, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// JWT_SECRET -> security.jwt_secret, DUCKDB_PATH -> database.path, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"port":             "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"idle_timeout":     "server.idle_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_ttl":             "security.token_ttl",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"login_rate_limit":    "security.login_rate_limit",
	"login_burst":         "security.login_burst",

	// API
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	// Analytics
	"analytics_enabled":                 "analytics.enabled",
	"analytics_schedule":                "analytics.schedule",
	"analytics_timezone":                "analytics.timezone",
	"analytics_run_on_start":            "analytics.run_on_start",
	"analytics_transactional":           "analytics.transactional",
	"analytics_skip_aggregated_windows": "analytics.skip_aggregated_windows",

	// Read tracking
	"read_queue_size":    "read_tracking.queue_size",
	"read_write_timeout": "read_tracking.write_timeout",
	"read_sink":          "read_tracking.sink",

	// Events
	"events_enabled":           "events.enabled",
	"events_transport":         "events.transport",
	"events_topic":             "events.topic",
	"events_buffer_size":       "events.buffer_size",
	"nats_url":                 "events.nats_url",
	"nats_embedded":            "events.embedded_server",
	"nats_store_dir":           "events.store_dir",
	"nats_stream_name":         "events.stream_name",
	"nats_durable_name":        "events.durable_name",
	"nats_queue_group":         "events.queue_group",
	"events_breaker_threshold": "events.circuit_breaker.failure_threshold",
	"events_breaker_timeout":   "events.circuit_breaker.timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - JWT_SECRET -> security.jwt_secret
//   - DUCKDB_PATH -> database.path
//   - ANALYTICS_SCHEDULE -> analytics.schedule
//   - NATS_URL -> events.nats_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
