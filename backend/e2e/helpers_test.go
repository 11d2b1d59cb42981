// ABOUTME: Test helpers for e2e tests
// ABOUTME: Builds the full router over httptest and manages environment variables

package e2e

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sparkcalc/sparkcalc/backend/cache"
	"github.com/sparkcalc/sparkcalc/backend/config"
	"github.com/sparkcalc/sparkcalc/backend/handlers"
	"github.com/sparkcalc/sparkcalc/backend/middleware"
	"github.com/sparkcalc/sparkcalc/backend/store"
)

const deratingBody = `{
	"base_rating_amps": 32,
	"cable_type": "pvc-70",
	"installation_method": "method-c",
	"ambient_temp_c": 30,
	"number_of_cables": 1,
	"thermal_insulation": "none"
}`

// withTestEnv sets environment variables for the test, pointing ENV_FILE at a
// file that does not exist so a developer's .env cannot leak in. Returns a
// cleanup function that restores all original values.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withTestEnv(t, map[string]string{
//	        "CORS_ALLOWED_ORIGINS": "https://example.com",
//	    }))
//	}
func withTestEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	vars := map[string]string{
		"ENV_FILE": filepath.Join(t.TempDir(), "missing.env"),
	}
	for key, value := range extra {
		vars[key] = value
	}

	type original struct {
		value string
		set   bool
	}
	originals := make(map[string]original, len(vars))
	for key, value := range vars {
		v, ok := os.LookupEnv(key)
		originals[key] = original{value: v, set: ok}
		os.Setenv(key, value)
	}

	return func() {
		for key, o := range originals {
			if o.set {
				os.Setenv(key, o.value)
			} else {
				os.Unsetenv(key)
			}
		}
	}
}

// newTestServer starts the full router for cfg with a memory store and
// metrics enabled.
func newTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *middleware.Metrics) {
	t.Helper()

	c := cache.New(5 * time.Minute)
	t.Cleanup(c.Close)

	m := middleware.NewMetrics()
	h := handlers.NewHandler(cfg, c, store.NewMemoryStore(), m)

	server := httptest.NewServer(handlers.NewRouter(h, cfg, m))
	t.Cleanup(server.Close)
	return server, m
}

// post sends a JSON body from the given client IP
func post(t *testing.T, server *httptest.Server, path, body, clientIP string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
