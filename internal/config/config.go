package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all process-wide configuration for the ingestion worker.
type Config struct {
	// Upstream game API
	UpstreamBaseURL   string        `envconfig:"UPSTREAM_BASE_URL" default:"https://proclubs.ea.com/api/nhl"`
	UpstreamPlatform  string        `envconfig:"UPSTREAM_PLATFORM" default:"common-gen5"`
	UpstreamMatchKind string        `envconfig:"UPSTREAM_MATCH_TYPE" default:"club_private"`
	UpstreamTimeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"clubarchive"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"clubarchive"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Database connection pool tuning
	DatabaseMaxConns          int32         `envconfig:"DATABASE_MAX_CONNS" default:"25"`
	DatabaseMinConns          int32         `envconfig:"DATABASE_MIN_CONNS" default:"5"`
	DatabaseMaxConnLifetime   time.Duration `envconfig:"DATABASE_MAX_CONN_LIFETIME" default:"1h"`
	DatabaseMaxConnIdleTime   time.Duration `envconfig:"DATABASE_MAX_CONN_IDLE_TIME" default:"30m"`
	DatabaseHealthCheckPeriod time.Duration `envconfig:"DATABASE_HEALTH_CHECK_PERIOD" default:"1m"`

	// Redis (club external-id resolution cache)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	CivilZone     string        `envconfig:"SCHEDULER_CIVIL_ZONE" default:"America/New_York"`
	ShutdownGrace time.Duration `envconfig:"SCHEDULER_SHUTDOWN_GRACE" default:"30s"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables, first attempting
// to populate the process environment from a .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks invariants Load cannot express through struct tags alone.
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}
	if _, err := time.LoadLocation(c.CivilZone); err != nil {
		return fmt.Errorf("SCHEDULER_CIVIL_ZONE %q is not a valid zone: %w", c.CivilZone, err)
	}
	return nil
}

// RedisAddr returns the Redis address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits the process, for use in main().
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
