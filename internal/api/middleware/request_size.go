package middleware

import (
	"net/http"
)

const (
	// DefaultMaxBodySize bounds bodies on most endpoints.
	DefaultMaxBodySize int64 = 1 << 20 // 1MB

	// EventMaxBodySize bounds event submissions, whose nested schedule
	// and ticket payloads run larger than other requests.
	EventMaxBodySize int64 = 2 << 20 // 2MB
)

// RequestSize caps the request body at maxBytes via http.MaxBytesReader;
// oversized bodies surface as a decode error in the handler.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// PublicRequestSize applies the default body limit.
func PublicRequestSize() func(http.Handler) http.Handler {
	return RequestSize(DefaultMaxBodySize)
}

// EventRequestSize applies the larger event submission limit.
func EventRequestSize() func(http.Handler) http.Handler {
	return RequestSize(EventMaxBodySize)
}
