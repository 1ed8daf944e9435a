package config

import (
	"os"
	"strconv"

	"sharpq/domain/stats"
	"sharpq/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Sharpen   SharpenConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds input data settings
type DataConfig struct {
	FilePath     string // default p-value table for the CLI
	Sheet        string // worksheet for Excel inputs
	PValueColumn string
}

// SharpenConfig holds q-value computation settings
type SharpenConfig struct {
	DefaultStep float64 // grid resolution when a request does not set one
	MaxBatch    int     // upper bound on p-values accepted per family
	MaxParallel int     // concurrent families per sweep
}

// ProfilingConfig holds debug server settings
type ProfilingConfig struct {
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
		Data: DataConfig{
			FilePath:     getEnv("DATA_FILE", ""),
			Sheet:        getEnv("DATA_SHEET", "Sheet1"),
			PValueColumn: getEnv("DATA_PVALUE_COLUMN", "p_value"),
		},
		Sharpen: SharpenConfig{
			DefaultStep: getEnvFloat("SHARPEN_STEP", stats.DefaultStep),
			MaxBatch:    getEnvInt("SHARPEN_MAX_BATCH", 100000),
			MaxParallel: getEnvInt("SHARPEN_MAX_PARALLEL", 4),
		},
		Profiling: ProfilingConfig{
			Port:    getEnv("PROFILING_PORT", "6060"),
			Enabled: getEnvBool("PROFILING_ENABLED", false),
		},
	}

	if err := validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validate(c *Config) error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	if err := stats.ValidateStep(c.Sharpen.DefaultStep); err != nil {
		return errors.Wrap(err, "SHARPEN_STEP is invalid")
	}
	if c.Sharpen.MaxBatch <= 0 {
		return errors.ConfigInvalid("SHARPEN_MAX_BATCH must be positive")
	}
	if c.Sharpen.MaxParallel <= 0 {
		return errors.ConfigInvalid("SHARPEN_MAX_PARALLEL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
