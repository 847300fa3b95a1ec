package config

import (
	"os"
	"strconv"
	"time"

	"maiveui/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Estimator EstimatorConfig
	Database  DatabaseConfig
	Ops       OpsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// EstimatorConfig holds settings for the remote R estimator
type EstimatorConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DatabaseConfig holds session-store database settings. An empty URL keeps
// sessions in process memory.
type DatabaseConfig struct {
	URL string
}

// OpsConfig holds the secondary ops/health server settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Estimator: EstimatorConfig{
			BaseURL: os.Getenv("ESTIMATOR_URL"),
			Timeout: getDurationEnv("ESTIMATOR_TIMEOUT", 5*time.Minute),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Ops: OpsConfig{
			Port:    getEnv("OPS_PORT", "8081"),
			Enabled: getBoolEnv("OPS_ENABLED", true),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(config *Config) error {
	if config.Estimator.BaseURL == "" {
		return errors.ConfigInvalid("ESTIMATOR_URL is required")
	}
	if config.Estimator.Timeout <= 0 {
		return errors.ConfigInvalid("ESTIMATOR_TIMEOUT must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
