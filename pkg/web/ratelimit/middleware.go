package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

// KeyFunc derives the limiter key of a request.
type KeyFunc func(*http.Request) string

// SubjectOrIP keys authenticated requests by subject and the rest by
// client address.
func SubjectOrIP(r *http.Request) string {
	if s, ok := crud.SubjectFrom(r.Context()); ok {
		return "subject:" + s.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Middleware rejects requests over the limit with 429 and reports the
// window in X-RateLimit headers. Limiter failures are logged and the
// request is let through. A nil key uses SubjectOrIP.
func Middleware(limiter Limiter, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = SubjectOrIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, err := limiter.Allow(r.Context(), key(r))
			if err != nil {
				crud.LoggerFrom(r.Context()).Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !info.Allowed {
				retry := int(time.Until(info.ResetAt).Seconds()) + 1
				h.Set("Retry-After", strconv.Itoa(max(retry, 1)))
				crud.WriteJSON(w, http.StatusTooManyRequests, crud.ErrorResponse{
					Error:   http.StatusTooManyRequests,
					Message: "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
