// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package config loads and validates Quill configuration.
//
// Configuration is layered with koanf, lowest priority first:
//  1. Struct defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/quill/config.yaml)
//  3. Environment variables, mapped explicitly by envTransformFunc
//
// Sections:
//   - Server: HTTP listener and timeouts
//   - Database: DuckDB file and resource limits
//   - Security: JWT signing, CORS and rate limits
//   - API: pagination limits
//   - Analytics: daily aggregation schedule and run policy
//   - ReadTracking: asynchronous read-log queue
//   - Events: optional watermill transport for read events
//   - Logging: zerolog level and format
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Security     SecurityConfig     `koanf:"security"`
	API          APIConfig          `koanf:"api"`
	Analytics    AnalyticsConfig    `koanf:"analytics"`
	ReadTracking ReadTrackingConfig `koanf:"read_tracking"`
	Events       EventsConfig       `koanf:"events"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB file. ":memory:" runs an in-memory database.
	Path string `koanf:"path"`

	// MaxMemory is passed to DuckDB's max_memory setting (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is DuckDB's worker thread count. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// SecurityConfig holds authentication and request-limiting settings.
type SecurityConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// LoginRateLimit is the sustained per-IP rate (requests/second) for
	// /api/auth/login, with LoginBurst allowed at once.
	LoginRateLimit float64 `koanf:"login_rate_limit"`
	LoginBurst     int     `koanf:"login_burst"`
}

// APIConfig holds list endpoint limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// AnalyticsConfig controls the daily aggregation job.
type AnalyticsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Schedule is a 5-field cron expression evaluated in Timezone.
	Schedule string `koanf:"schedule"`
	Timezone string `koanf:"timezone"`

	// RunOnStart performs one catch-up run when the scheduler starts.
	RunOnStart bool `koanf:"run_on_start"`

	// Transactional applies all upserts of a run in one transaction.
	Transactional bool `koanf:"transactional"`

	// SkipAggregatedWindows rejects runs for windows already recorded
	// in the aggregation_runs watermark table.
	SkipAggregatedWindows bool `koanf:"skip_aggregated_windows"`
}

// Read tracking sinks.
const (
	ReadSinkDatabase = "database"
	ReadSinkEvents   = "events"
)

// ReadTrackingConfig controls the asynchronous read-log queue.
type ReadTrackingConfig struct {
	QueueSize    int           `koanf:"queue_size"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// Sink is "database" (direct insert) or "events" (publish to the
	// events transport, persisted by its consumer).
	Sink string `koanf:"sink"`
}

// Event transports.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// EventsConfig controls the watermill transport for read events.
type EventsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Transport string `koanf:"transport"`
	Topic     string `koanf:"topic"`

	// NATS transport settings.
	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	StreamName     string `koanf:"stream_name"`
	DurableName    string `koanf:"durable_name"`
	QueueGroup     string `koanf:"queue_group"`

	// GoChannel transport buffer.
	BufferSize int64 `koanf:"buffer_size"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig holds gobreaker settings for event publishing.
type CircuitBreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
