package http

import (
	"net/http"
	"strings"
)

const (
	// The API serves JSON only, so nothing may load subresources.
	cspDefault = "default-src 'none'"
	// The swagger UI page needs inline scripts, styles and data images.
	cspSwagger = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
)

// SecurityHeaders sets browser hardening headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := cspDefault
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			csp = cspSwagger
		}
		w.Header().Set("Content-Security-Policy", csp)

		next.ServeHTTP(w, r)
	})
}
