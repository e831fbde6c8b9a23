package policy

import (
	"context"
	"net/http"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

type contextKey int

const enforcedByKey contextKey = iota

// EnforcedBy records which subject, and in which domain, passed the policy
// check of a request.
type EnforcedBy struct {
	Subject string
	Domain  string
}

// EnforcedByFrom returns the policy decision stored by Middleware.
func EnforcedByFrom(ctx context.Context) (EnforcedBy, bool) {
	e, ok := ctx.Value(enforcedByKey).(EnforcedBy)
	return e, ok
}

// Option configures Middleware.
type Option func(*options)

type options struct {
	domain func(*http.Request) string
	object func(*http.Request) string
	roles  bool
}

// WithDomain sets the domain of each request, such as a tenant header.
func WithDomain(fn func(*http.Request) string) Option {
	return func(o *options) {
		o.domain = fn
	}
}

// WithObject overrides the object, which defaults to the URL path.
func WithObject(fn func(*http.Request) string) Option {
	return func(o *options) {
		o.object = fn
	}
}

// WithRoles also checks each role of the subject when the subject itself is
// denied.
func WithRoles() Option {
	return func(o *options) {
		o.roles = true
	}
}

// Middleware checks every request against enforcer. The subject comes from
// the request context, the object is the URL path and the action is the
// HTTP method. Requests without a subject or that are denied get 403; an
// enforcer failure is a 500.
func Middleware(enforcer Enforcer, opts ...Option) func(http.Handler) http.Handler {
	o := options{
		object: func(r *http.Request) string { return r.URL.Path },
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := crud.SubjectFrom(r.Context())
			if !ok {
				crud.WriteError(w, r, crud.ErrForbidden)
				return
			}

			req := Request{Object: o.object(r), Action: r.Method}
			if o.domain != nil {
				req.Domain = o.domain(r)
			}

			candidates := []string{subject.ID}
			if o.roles {
				candidates = append(candidates, subject.Roles...)
			}
			for _, candidate := range candidates {
				req.Subject = candidate
				allowed, err := enforcer.Enforce(r.Context(), req)
				if err != nil {
					crud.WriteError(w, r, crud.Internal(err))
					return
				}
				if allowed {
					ctx := context.WithValue(r.Context(), enforcedByKey, EnforcedBy{Subject: candidate, Domain: req.Domain})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			crud.WriteError(w, r, crud.ErrForbidden)
		})
	}
}
