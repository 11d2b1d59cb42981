// ABOUTME: Tests for CORS and middleware chaining
// ABOUTME: Verifies origin allowlisting, preflight handling and chain order

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSWithConfig_AllowedOriginEchoed(t *testing.T) {
	allowedOrigins := []string{"https://example.com", "http://localhost:5173"}
	handler := CORSWithConfig(allowedOrigins)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cables", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://example.com")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, DELETE, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, "GET, POST, DELETE, OPTIONS")
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want %q", got, "Origin")
	}
}

func TestCORSWithConfig_DisallowedOriginNoHeaders(t *testing.T) {
	handler := CORSWithConfig([]string{"https://example.com"})(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cables", nil)
	req.Header.Set("Origin", "https://evil.com")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin should be empty for disallowed origin, got %q", got)
	}
}

func TestCORSWithConfig_SameOriginPassesThrough(t *testing.T) {
	handlerCalled := false
	handler := CORSWithConfig([]string{"https://example.com"})(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	// Same-origin requests don't include Origin header
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculations", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !handlerCalled {
		t.Error("Handler should be called for POST")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin should not be set without Origin, got %q", got)
	}
}

func TestCORSWithConfig_Preflight(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		wantHeader string
	}{
		{"allowed origin", "https://example.com", "https://example.com"},
		{"disallowed origin", "https://evil.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := CORSWithConfig([]string{"https://example.com"})(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/calculate/pricing", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("Status = %d, want %d", rec.Code, http.StatusNoContent)
			}
			if handlerCalled {
				t.Error("Handler should not be called for OPTIONS preflight")
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestCORSWithConfig_MultipleAllowedOrigins(t *testing.T) {
	allowedOrigins := []string{"https://prod.example.com", "http://localhost:5173", "https://staging.example.com"}

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://prod.example.com", true},
		{"http://localhost:5173", true},
		{"https://staging.example.com", true},
		{"https://evil.com", false},
		{"http://localhost:3000", false}, // Different port
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			handler := CORSWithConfig(allowedOrigins)(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed && got != tt.origin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.origin)
			}
			if !tt.allowed && got != "" {
				t.Errorf("Access-Control-Allow-Origin should be empty, got %q", got)
			}
		})
	}
}

func TestCORSWithConfig_Wildcard(t *testing.T) {
	handler := CORSWithConfig([]string{"*"})(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the request origin", got)
	}
}

func TestCORSWithConfig_EmptyAllowedOrigins(t *testing.T) {
	// With no allowed origins, all cross-origin requests should be rejected
	handler := CORSWithConfig(nil)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin should be empty with no allowed origins, got %q", got)
	}
}

func TestChain_AppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	first := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "first-before")
			next(w, r)
			order = append(order, "first-after")
		}
	}

	second := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "second-before")
			next(w, r)
			order = append(order, "second-after")
		}
	}

	handler := Chain(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, first, nil, second)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	expected := []string{"first-before", "second-before", "handler", "second-after", "first-after"}
	if len(order) != len(expected) {
		t.Fatalf("order length = %d, want %d", len(order), len(expected))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("order[%d] = %q, want %q", i, order[i], v)
		}
	}
}

func TestChain_EmptyMiddlewares(t *testing.T) {
	handlerCalled := false
	handler := Chain(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !handlerCalled {
		t.Error("Handler should be called with empty middleware chain")
	}
}
