// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for databases and the feed cache
	FeedBaseURL string // Upstream price/broker feed base URL
	LogLevel    string
	Port        int
	DevMode     bool
	// Watchlist is the set of symbols the daily sync job refreshes.
	Watchlist []string
	// Thresholds carries every tunable band and window used by the
	// indicator deriver and scoring engine.
	Thresholds Thresholds
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BANDARSCOPE_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		FeedBaseURL: getEnv("FEED_BASE_URL", "http://localhost:9600"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvAsInt("PORT", 8010),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		Watchlist:   getEnvAsList("WATCHLIST", nil),
		Thresholds:  DefaultThresholds(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.FeedBaseURL == "" {
		return fmt.Errorf("FEED_BASE_URL must not be empty")
	}
	return c.Thresholds.Validate()
}

// getEnv retrieves an environment variable value, returning a fallback
// if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsBool retrieves an environment variable as a boolean
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsList retrieves a comma-separated environment variable
func getEnvAsList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
