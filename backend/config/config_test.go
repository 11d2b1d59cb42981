package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Cleanup(withCleanEnv(t, nil))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("Expected default cache TTL 300, got %d", cfg.CacheTTL)
	}
	if cfg.MaxRequestBodyBytes != 1<<20 {
		t.Errorf("Expected default body limit 1MiB, got %d", cfg.MaxRequestBodyBytes)
	}
	if !cfg.RateLimitEnabled || cfg.RateLimitRequests != 100 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("Expected rate limit 100/1m enabled, got %v %d/%s", cfg.RateLimitEnabled, cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if !cfg.MetricsEnabled {
		t.Error("Expected metrics enabled by default")
	}
	if cfg.PostgresConfigured() {
		t.Error("Expected in-memory store by default")
	}
	if cfg.DefaultHourlyRate != 45 {
		t.Errorf("Expected default hourly rate 45, got %v", cfg.DefaultHourlyRate)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{
		"PORT":                 "9090",
		"CACHE_TTL":            "60",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"RATE_LIMIT_WINDOW":    "30s",
		"METRICS_ENABLED":      "false",
		"DATABASE_URL":         "postgres://localhost/sparkcalc?sslmode=disable",
		"DEFAULT_HOURLY_RATE":  "52.5",
	}))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9090" || cfg.CacheTTL != 60 {
		t.Errorf("Expected port 9090 and TTL 60, got %s and %d", cfg.Port, cfg.CacheTTL)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("Expected origins %v, got %v", want, cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("Expected 30s window, got %s", cfg.RateLimitWindow)
	}
	if cfg.MetricsEnabled {
		t.Error("Expected metrics disabled")
	}
	if !cfg.PostgresConfigured() {
		t.Error("Expected postgres store to be configured")
	}
	if cfg.DefaultHourlyRate != 52.5 {
		t.Errorf("Expected hourly rate 52.5, got %v", cfg.DefaultHourlyRate)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-numeric port", map[string]string{"PORT": "http"}},
		{"negative cache ttl", map[string]string{"CACHE_TTL": "-1"}},
		{"tiny body limit", map[string]string{"MAX_REQUEST_BODY_BYTES": "10"}},
		{"zero rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}},
		{"huge rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "20000"}},
		{"sub-second window", map[string]string{"RATE_LIMIT_WINDOW": "10ms"}},
		{"zero hourly rate", map[string]string{"DEFAULT_HOURLY_RATE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(withCleanEnv(t, tt.env))
			if _, err := Load(); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{"PORT": "7000"}))

	path := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=9999\nCACHE_TTL=42\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	os.Setenv("ENV_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// existing environment wins over the file
	if cfg.Port != "7000" {
		t.Errorf("Expected PORT from environment 7000, got %s", cfg.Port)
	}
	if cfg.CacheTTL != 42 {
		t.Errorf("Expected CACHE_TTL 42 from file, got %d", cfg.CacheTTL)
	}
}
