// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package config

import (
	"fmt"
	"strings"
	"time"
)

// MinJWTSecretLength is the minimum accepted HMAC signing secret length.
const MinJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateAnalytics(); err != nil {
		return err
	}
	if err := c.validateReadTracking(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	if c.Security.TokenTTL < time.Minute {
		return fmt.Errorf("JWT_TTL must be at least 1m")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
		if c.Security.LoginRateLimit <= 0 || c.Security.LoginBurst < 1 {
			return fmt.Errorf("LOGIN_RATE_LIMIT must be positive and LOGIN_BURST at least 1")
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < 1 {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be at least 1")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be between 1 and API_MAX_PAGE_SIZE (%d)", c.API.MaxPageSize)
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	if !c.Analytics.Enabled {
		return nil
	}
	if len(strings.Fields(c.Analytics.Schedule)) != 5 {
		return fmt.Errorf("ANALYTICS_SCHEDULE must be a 5-field cron expression, got %q", c.Analytics.Schedule)
	}
	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("ANALYTICS_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateReadTracking() error {
	if c.ReadTracking.QueueSize < 1 {
		return fmt.Errorf("READ_QUEUE_SIZE must be at least 1")
	}
	if c.ReadTracking.WriteTimeout <= 0 {
		return fmt.Errorf("READ_WRITE_TIMEOUT must be positive")
	}
	switch c.ReadTracking.Sink {
	case ReadSinkDatabase:
	case ReadSinkEvents:
		if !c.Events.Enabled {
			return fmt.Errorf("READ_SINK=events requires EVENTS_ENABLED=true")
		}
	default:
		return fmt.Errorf("READ_SINK must be %q or %q, got %q", ReadSinkDatabase, ReadSinkEvents, c.ReadTracking.Sink)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_ENABLED=true")
	}
	switch c.Events.Transport {
	case TransportGoChannel:
		if c.Events.BufferSize < 0 {
			return fmt.Errorf("EVENTS_BUFFER_SIZE must be >= 0")
		}
	case TransportNATS:
		if !c.Events.EmbeddedServer && !strings.HasPrefix(c.Events.NATSURL, "nats://") {
			return fmt.Errorf("NATS_URL must start with nats:// when NATS_EMBEDDED=false")
		}
		if c.Events.EmbeddedServer && c.Events.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
		if c.Events.StreamName == "" || c.Events.DurableName == "" {
			return fmt.Errorf("NATS_STREAM_NAME and NATS_DURABLE_NAME are required for the nats transport")
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be %q or %q, got %q", TransportGoChannel, TransportNATS, c.Events.Transport)
	}
	if c.Events.CircuitBreaker.FailureThreshold < 1 {
		return fmt.Errorf("EVENTS_BREAKER_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
