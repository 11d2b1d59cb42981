// ABOUTME: Configuration loader for the calculation API
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port                string
	CacheTTL            int      // seconds, calculation result cache
	CORSAllowedOrigins  []string // allowed CORS origins (empty = block all cross-origin)
	MaxRequestBodyBytes int64    // cap on JSON request bodies (default: 1 MiB)
	MetricsEnabled      bool     // expose /metrics (default: true)

	// Rate Limiting
	RateLimitEnabled  bool          // Enable rate limiting (default: true)
	RateLimitRequests int           // Requests per window per client (default: 100)
	RateLimitWindow   time.Duration // Window length (default: 1m)

	// Storage (optional)
	DatabaseURL string // Postgres DSN; empty = in-memory store

	// Pricing
	DefaultHourlyRate float64 // prefilled rate for the pricing wizard and examples (GBP)
}

// PostgresConfigured returns true if a database URL is set
func (c *Config) PostgresConfigured() bool {
	return c.DatabaseURL != ""
}

// Load reads configuration. A .env file in the working directory (or the
// file named by ENV_FILE) is applied first without overriding the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		CacheTTL:            getEnvInt("CACHE_TTL", 300),
		CORSAllowedOrigins:  getEnvStringList("CORS_ALLOWED_ORIGINS"),
		MaxRequestBodyBytes: int64(getEnvInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),

		RateLimitEnabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		DefaultHourlyRate: getEnvFloat("DEFAULT_HOURLY_RATE", 45),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CACHE_TTL cannot be negative, got %d", cfg.CacheTTL)
	}
	if cfg.MaxRequestBodyBytes < 1024 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_BYTES must be at least 1024, got %d", cfg.MaxRequestBodyBytes)
	}
	if cfg.RateLimitRequests < 1 || cfg.RateLimitRequests > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 10000, got %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow < time.Second {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %s", cfg.RateLimitWindow)
	}
	if !(cfg.DefaultHourlyRate > 0) {
		return nil, fmt.Errorf("DEFAULT_HOURLY_RATE must be greater than zero, got %v", cfg.DefaultHourlyRate)
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		slog.Debug("Loaded environment file", "path", path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
