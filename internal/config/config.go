package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"docmorph/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	BackendURL     string
	StateDir       string
	Profile        string
	MaxFileSize    int64
	LogLevel       string
	StartupTimeout time.Duration
	SupabaseURL    string
	SupabaseKey    string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		BackendURL:     getEnvOrDefault("DOCMORPH_BACKEND_URL", "http://localhost:8080"),
		StateDir:       getEnvOrDefault("DOCMORPH_STATE_DIR", defaultStateDir()),
		Profile:        getEnvOrDefault("DOCMORPH_PROFILE", "default"),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", domain.MaxUploadBytes),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		StartupTimeout: getEnvDurationOrDefault("DOCMORPH_STARTUP_TIMEOUT", 10*time.Second),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
	}
}

// GetServerPort returns the dev server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetBackendURL returns the conversion service base URL
func (c *AppConfig) GetBackendURL() string {
	return c.BackendURL
}

// GetStateDir returns the directory holding per-profile state databases
func (c *AppConfig) GetStateDir() string {
	return c.StateDir
}

// GetProfile returns the active state profile name
func (c *AppConfig) GetProfile() string {
	return c.Profile
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetStartupTimeout returns the deadline for restoring a cached auth
// session at startup
func (c *AppConfig) GetStartupTimeout() time.Duration {
	return c.StartupTimeout
}

// GetSupabaseURL returns the Supabase URL override
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key override
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".docmorph"
	}
	return filepath.Join(base, "docmorph")
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
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
