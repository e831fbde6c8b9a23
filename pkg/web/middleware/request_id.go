package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

// RequestIDConfig holds configuration for the request ID middleware
type RequestIDConfig struct {
	// HeaderName is the name of the header to read/write the request ID
	HeaderName string
	// Generator is a custom function to generate request IDs
	Generator func() string
}

// DefaultRequestIDConfig returns the default request ID configuration
func DefaultRequestIDConfig() RequestIDConfig {
	return RequestIDConfig{
		HeaderName: "X-Request-ID",
		Generator:  func() string { return uuid.New().String() },
	}
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID() Middleware {
	return RequestIDWithConfig(DefaultRequestIDConfig())
}

// RequestIDWithConfig creates a request ID middleware with custom configuration
func RequestIDWithConfig(config RequestIDConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(config.HeaderName)
			if requestID == "" {
				requestID = config.Generator()
			}

			w.Header().Set(config.HeaderName, requestID)
			next.ServeHTTP(w, r.WithContext(crud.WithRequestID(r.Context(), requestID)))
		})
	}
}
