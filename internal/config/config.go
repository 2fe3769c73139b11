// Package config manages environment variables.
//
// It reads variables from the process environment (optionally seeded
// from a `.env` file), maps them into structured Go types, and
// validates that required values are present so the application fails
// fast on bad or missing configuration.
//
// Env vars use the PEREVAL_ prefix and dot notation for nesting:
//
//	PEREVAL_DATABASE.HOST -> database.host -> Config.Database.Host
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process
	// environment before any env var is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional; when absent,
// defaults are injected by Load.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are stored as seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// Load reads configuration from PEREVAL_-prefixed environment
// variables, unmarshals it into Config, validates it, and applies
// observability defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider("PEREVAL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PEREVAL_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.Observability == nil {
		cfg.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are forced so telemetry is tagged
	// consistently regardless of what the environment provides.
	cfg.Observability.ServiceName = "pereval-api"
	cfg.Observability.Environment = cfg.Primary.Env

	if err := cfg.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("validating observability config: %w", err)
	}

	return cfg, nil
}
