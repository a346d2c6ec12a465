package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the preflight/QC engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (the database
// password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8931"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Collector configuration (SERP / news signal sources)
	Collectors CollectorConfig `yaml:"collectors"`

	// Pipeline configuration (batch QC runs)
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"blcwrtr"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"blcwrtr"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// URL returns the connection string for pgx.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// CollectorConfig holds signal collector settings.
type CollectorConfig struct {
	// UseMocks selects the deterministic mock collectors instead of live APIs.
	// The live collectors require API keys; mocks are the default everywhere
	// except production.
	UseMocks bool `yaml:"use_mocks" env:"USE_MOCK_COLLECTORS" env-default:"true"`

	// TimeoutSeconds bounds a single collector call. Timeouts apply only at
	// this boundary; the core scoring functions have no blocking operations.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"COLLECTOR_TIMEOUT_SECONDS" env-default:"10"`

	// DefaultLocale is used when an order does not carry one.
	DefaultLocale string `yaml:"default_locale" env:"COLLECTOR_DEFAULT_LOCALE" env-default:"sv-SE"`
}

// PipelineConfig holds batch processing settings.
type PipelineConfig struct {
	// Workers is the size of the bounded worker pool. Each worker owns one
	// order's pipeline exclusively for the duration of its run.
	Workers int `yaml:"workers" env:"PIPELINE_WORKERS" env-default:"4"`

	// LeaseTTLSeconds bounds how long a worker may hold an order lease.
	LeaseTTLSeconds int `yaml:"lease_ttl_seconds" env:"PIPELINE_LEASE_TTL_SECONDS" env-default:"300"`
}

// Load reads configuration from config.yaml (if present) and environment.
func Load(version string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	cfg.Version = version

	if cfg.Pipeline.Workers < 1 {
		return nil, fmt.Errorf("pipeline workers must be at least 1, got %d", cfg.Pipeline.Workers)
	}

	return cfg, nil
}
