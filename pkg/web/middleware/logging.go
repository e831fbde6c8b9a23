package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	Logger *zap.Logger
	// SkipPaths is a list of paths to skip logging
	SkipPaths []string
}

// Logging creates a logging middleware writing to logger.
func Logging(logger *zap.Logger) Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: logger})
}

// LoggingWithConfig attaches a request scoped logger to the context and
// logs one entry per completed request. Server errors are logged at error
// level, client errors at warn level.
func LoggingWithConfig(config LoggingConfig) Middleware {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger
			if id := crud.RequestIDFrom(r.Context()); id != "" {
				reqLogger = logger.With(zap.String("request_id", id))
			}
			r = r.WithContext(crud.WithLogger(r.Context(), reqLogger))

			if skipped(config.SkipPaths, r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int("bytes", rw.bytesWritten),
				zap.String("remote_addr", r.RemoteAddr),
			}
			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				reqLogger.Error("request", fields...)
			case rw.statusCode >= http.StatusBadRequest:
				reqLogger.Warn("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and bytes written
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	wroteHeader  bool
}

// WriteHeader captures the status code
func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

// Write captures bytes written
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}
