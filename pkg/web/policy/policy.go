// Package policy enforces route level access rules before a request reaches
// a generated resource.
package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
)

// Request is the tuple checked by an Enforcer.
type Request struct {
	Subject string
	Domain  string
	Object  string
	Action  string
}

// String renders r as a cache key. Each part is length prefixed, so parts
// containing the separator cannot make two requests share a key.
func (r Request) String() string {
	return fmt.Sprintf("%d:%s|%d:%s|%d:%s|%d:%s",
		len(r.Subject), r.Subject, len(r.Domain), r.Domain,
		len(r.Object), r.Object, len(r.Action), r.Action)
}

// Enforcer decides whether a request is allowed.
type Enforcer interface {
	Enforce(ctx context.Context, req Request) (bool, error)
}

// EnforcerFunc adapts a function to the Enforcer interface.
type EnforcerFunc func(ctx context.Context, req Request) (bool, error)

// Enforce calls f.
func (f EnforcerFunc) Enforce(ctx context.Context, req Request) (bool, error) {
	return f(ctx, req)
}

// Casbin enforces requests against a casbin model and policy. Requests with
// a domain are checked as (sub, dom, obj, act), others as (sub, obj, act).
type Casbin struct {
	enforcer *casbin.SyncedEnforcer
}

// NewCasbin loads the model and policy files.
func NewCasbin(modelPath, policyPath string) (*Casbin, error) {
	e, err := casbin.NewSyncedEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, fmt.Errorf("load casbin policy: %w", err)
	}
	return &Casbin{enforcer: e}, nil
}

// NewCasbinFromEnforcer wraps a configured enforcer.
func NewCasbinFromEnforcer(e *casbin.SyncedEnforcer) (*Casbin, error) {
	if e == nil {
		return nil, errors.New("casbin enforcer is nil")
	}
	return &Casbin{enforcer: e}, nil
}

// Enforce implements Enforcer.
func (c *Casbin) Enforce(_ context.Context, req Request) (bool, error) {
	if req.Domain != "" {
		return c.enforcer.Enforce(req.Subject, req.Domain, req.Object, req.Action)
	}
	return c.enforcer.Enforce(req.Subject, req.Object, req.Action)
}

// Reload reloads the policy from its adapter.
func (c *Casbin) Reload() error {
	return c.enforcer.LoadPolicy()
}
