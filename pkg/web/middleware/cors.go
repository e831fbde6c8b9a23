package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for CORS middleware
type CORSConfig struct {
	// AllowedOrigins lists allowed origins. "*" allows any origin and
	// "*.example.com" any subdomain of example.com.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is how long preflight results may be cached, in seconds.
	MaxAge int
}

// DefaultCORSConfig allows the methods and headers generated resources use.
func DefaultCORSConfig(origins ...string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "X-Request-ID", "X-Subject", "X-Roles"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         86400,
	}
}

// CORS creates a CORS middleware. Preflight requests are answered with
// 204 and never reach next.
func CORS(config CORSConfig) Middleware {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && originAllowed(origin, config.AllowedOrigins)
			h := w.Header()
			h.Add("Vary", "Origin")
			if allowed {
				h.Set("Access-Control-Allow-Origin", origin)
				if exposed != "" {
					h.Set("Access-Control-Expose-Headers", exposed)
				}
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}

			if allowed {
				if methods != "" {
					h.Set("Access-Control-Allow-Methods", methods)
				}
				if headers != "" {
					h.Set("Access-Control-Allow-Headers", headers)
				}
				if config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		switch {
		case a == "*", a == origin:
			return true
		case strings.HasPrefix(a, "*.") && strings.HasSuffix(origin, a[1:]):
			return true
		}
	}
	return false
}
