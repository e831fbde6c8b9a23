// Package crud is the runtime imported by generated resources: request
// subjects, the Permissions capability, the error model, value parsing,
// body decoding and JSON rendering.
package crud

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey int

const (
	subjectKey contextKey = iota
	loggerKey
	requestIDKey
)

// Subject is the authenticated caller of a request.
type Subject struct {
	ID     string
	Roles  []string
	Claims map[string]any
}

// HasRole reports whether the subject carries role.
func (s *Subject) HasRole(role string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Roles, role)
}

// WithSubject adds the subject to the context
func WithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectKey, s)
}

// SubjectFrom extracts the subject from the context
func SubjectFrom(ctx context.Context) (*Subject, bool) {
	s, ok := ctx.Value(subjectKey).(*Subject)
	return s, ok && s != nil
}

// WithLogger adds a request scoped logger to the context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFrom returns the request scoped logger, or a no-op logger.
func LoggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom extracts the request ID from the context
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
