// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultDatabaseURL is used when DATABASE_URL is unset.
const DefaultDatabaseURL = "postgres://localhost/axum_users"

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppHost string `env:"APP_HOST" envDefault:"0.0.0.0"`
	AppPort int    `env:"APP_PORT" envDefault:"3000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Redis backs per-IP rate limiting and the user event stream. Empty disables both.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Publish user lifecycle events to a Redis stream
	EventsEnabled bool `env:"EVENTS_ENABLED" envDefault:"true"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Browser origins allowed to call the API. Empty disables CORS.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.AppHost, strconv.Itoa(c.AppPort))
}

// RateLimitActive reports whether per-IP rate limiting should be installed.
func (c *Config) RateLimitActive() bool {
	return c.RateLimitEnabled && c.RedisURL != ""
}

// EventsActive reports whether lifecycle events should be published.
func (c *Config) EventsActive() bool {
	return c.EventsEnabled && c.RedisURL != ""
}

// RedisRequired reports whether any feature needs a Redis connection.
func (c *Config) RedisRequired() bool {
	return c.RateLimitActive() || c.EventsActive()
}

// Load reads an optional .env file, then parses environment variables.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}
	return cfg, nil
}
