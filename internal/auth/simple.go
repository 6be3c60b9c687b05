package auth

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
)

// Middleware enforces a bearer token when VGETD_API_TOKEN is set. The
// server fronts a browser UI, so with no token configured all requests
// pass through. Health, readiness and metrics endpoints are always open.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := os.Getenv("VGETD_API_TOKEN")
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		switch r.URL.Path {
		case "/healthz", "/readyz", "/metrics":
			next.ServeHTTP(w, r)
			return
		}

		// Expect: Authorization: Bearer <token>
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			http.Error(w, "missing API token", http.StatusUnauthorized)
			return
		}

		got := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "invalid API token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
