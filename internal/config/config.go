// Package config loads application settings from the environment.
package config

import (
	"os"
	"strconv"

	"saga/domain/gaussian"
	"saga/internal/errors"
)

// Config represents the complete application configuration.
type Config struct {
	Gaussian gaussian.Config
	Server   ServerConfig
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it.
// Every field has a working default, so an empty environment is valid.
func Load() (*Config, error) {
	cfg := &Config{
		Gaussian: gaussian.Config{
			TailCut:         getEnvFloatOrDefault("SAGA_TAIL_CUT", gaussian.DefaultConfig().TailCut),
			ChiSquareBucket: getEnvIntOrDefault("SAGA_CHI_SQUARE_BUCKET", gaussian.DefaultConfig().ChiSquareBucket),
			MinPValue:       getEnvFloatOrDefault("SAGA_MIN_PVALUE", gaussian.DefaultConfig().MinPValue),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}
	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Gaussian.TailCut <= 0 {
		return errors.InvalidInput("SAGA_TAIL_CUT must be positive")
	}
	if cfg.Gaussian.ChiSquareBucket < 1 {
		return errors.InvalidInput("SAGA_CHI_SQUARE_BUCKET must be at least 1")
	}
	if cfg.Gaussian.MinPValue <= 0 || cfg.Gaussian.MinPValue >= 1 {
		return errors.InvalidInput("SAGA_MIN_PVALUE must be in (0, 1)")
	}
	if cfg.Server.Port == "" {
		return errors.InvalidInput("PORT must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
