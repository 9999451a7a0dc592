package http

import (
	"net/http"

	"github.com/keyfold/keyfold"
)

// AuthMiddleware enforces the shared-secret gate over the API surface.
// The secret travels as the literal value of the Authorization header, no
// scheme prefix. An empty configured secret disables the gate.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	if secret == "" {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !keyfold.Authorize(r.URL.Path, r.Header.Get("Authorization"), secret) {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
