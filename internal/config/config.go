// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// one exists), layers them over built-in defaults, loads them into
// structured Go types and validates them so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Provide defaults that match the service's historical fixed behaviour
//     (listen on 0.0.0.0:5000, load rf_clf.json).
//   - Map IRIS_* env vars into the Config struct.
//   - Validate required values so the app fails fast on bad config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env, if present,
	// before any config is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the IRIS_ prefix. After trimming the prefix and
	lowercasing, a double underscore marks nesting:

		IRIS_SERVER__PORT          -> server.port
		IRIS_MODEL__PATH           -> model.path
		IRIS_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level

	Single underscores stay part of the key (read_timeout, ssl_mode, ...).
*/

// EnvPrefix is the prefix every config env var must carry.
const EnvPrefix = "IRIS_"

// ServiceName identifies this service in logs and APM.
const ServiceName = "iris-api"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it may be built programmatically
// without one; LoadConfig always fills it.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Model         ModelConfig          `koanf:"model" validate:"required"`
	Metrics       MetricsConfig        `koanf:"metrics"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Host               string   `koanf:"host"`
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// ModelConfig points at the serialized classifier loaded at startup.
type ModelConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"omitempty,startswith=/"`
}

// defaults are loaded before the environment so that an empty environment
// still yields a complete, valid config.
func defaults() map[string]interface{} {
	obs := DefaultObservabilityConfig()

	return map[string]interface{}{
		"primary.env": "local",

		"server.host":                 "0.0.0.0",
		"server.port":                 "5000",
		"server.read_timeout":         30,
		"server.write_timeout":        30,
		"server.idle_timeout":         60,
		"server.cors_allowed_origins": []string{"*"},

		"model.path": "rf_clf.json",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",

		"observability.logging.level":                         obs.Logging.Level,
		"observability.logging.format":                        obs.Logging.Format,
		"observability.logging.slow_prediction_threshold":     obs.Logging.SlowPredictionThreshold.String(),
		"observability.logging.file":                          obs.Logging.File,
		"observability.new_relic.license_key":                 obs.NewRelic.LicenseKey,
		"observability.new_relic.app_log_forwarding_enabled":  obs.NewRelic.AppLogForwardingEnabled,
		"observability.new_relic.distributed_tracing_enabled": obs.NewRelic.DistributedTracingEnabled,
		"observability.new_relic.debug_logging":               obs.NewRelic.DebugLogging,
	}
}

// envKey maps IRIS_SERVER__READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig loads defaults and environment variables, unmarshals them into
// Config, validates the result and returns it.
//
// Behavior summary:
//   - Loads built-in defaults
//   - Overlays env vars with prefix IRIS_
//   - Unmarshals into Config
//   - Validates struct tags and observability rules
//   - Forces observability service name and environment
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate injects observability defaults when the block is missing, runs
// struct-tag validation and then applies observability's own rules.
func (c *Config) Validate() error {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed; environment follows primary.env so logs and
	// traces always agree with the rest of the config.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
