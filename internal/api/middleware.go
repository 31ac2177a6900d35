package api

import (
	"mime"
	"net/http"

	"github.com/terra-clan/coding-tracker/internal/tracker"
)

// maxRequestBytes bounds JSON bodies; it leaves room for escaping around
// the largest accepted code payload
const maxRequestBytes = 4*tracker.MaxCodeSize + 4096

// requireJSON rejects write requests that do not declare a JSON body
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			respondError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody caps the request body size
func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
