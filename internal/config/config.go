package config

import (
	"os"
	"strconv"
	"time"

	"absentee/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Ops       OpsConfig
	Session   SessionConfig
	Upload    UploadConfig
	Dashboard DashboardConfig
	Log       LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OpsConfig holds the metrics/health/profiling listener settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// SessionConfig controls the lifetime of uploaded datasets
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	CookieName    string
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxBytes int64
}

// DashboardConfig holds presentation settings
type DashboardConfig struct {
	TableRowLimit int
	HistogramBins int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			GinMode:      getEnvOrDefault("GIN_MODE", "release"),
			ReadTimeout:  getEnvDurationOrDefault("READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDurationOrDefault("WRITE_TIMEOUT", 30*time.Second),
		},
		Ops: OpsConfig{
			Port:    getEnvOrDefault("OPS_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
		},
		Session: SessionConfig{
			TTL:           getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
			SweepInterval: getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			CookieName:    getEnvOrDefault("SESSION_COOKIE", "absentee_session"),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 20)) * 1024 * 1024,
		},
		Dashboard: DashboardConfig{
			TableRowLimit: getEnvIntOrDefault("TABLE_ROW_LIMIT", 500),
			HistogramBins: getEnvIntOrDefault("HISTOGRAM_BINS", 10),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Ops.Enabled && config.Ops.Port == config.Server.Port {
		return errors.ConfigInvalid("OPS_PORT must differ from PORT")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Session.SweepInterval <= 0 {
		return errors.ConfigInvalid("SESSION_SWEEP_INTERVAL must be positive")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Dashboard.HistogramBins < 1 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be at least 1")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
