package middleware

import (
	"net/http"
)

const (
	// DefaultMaxRequestSize is the default maximum request body size.
	// Food photos arrive base64-encoded in JSON bodies, so the cap is
	// considerably larger than a typical JSON API would carry.
	DefaultMaxRequestSize int64 = 10 << 20 // 10MB
)

// MaxRequestSize limits the size of request bodies.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
