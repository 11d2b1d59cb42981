// ABOUTME: CORS middleware for API cross-origin requests
// ABOUTME: Echoes allowed origins only and answers preflight OPTIONS requests

package middleware

import "net/http"

// CORSWithConfig returns middleware that adds CORS headers for origins in
// allowedOrigins. An entry of "*" allows any origin. Requests without an
// Origin header (same-origin, curl, the CLI) pass through untouched.
// OPTIONS preflights are answered with 204 without calling the handler.
func CORSWithConfig(allowedOrigins []string) Middleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed[origin] || allowed["*"]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Cache, Retry-After")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next(w, r)
		}
	}
}
