// Package middleware holds the HTTP middleware mounted in front of generated
// resources: CORS, request IDs, structured request logging, panic recovery
// and subject extraction.
package middleware

import (
	"net/http"
)

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain represents a composable chain of middleware
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Use adds a middleware to the chain
func (c *Chain) Use(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Then wraps handler so that the first middleware added runs first.
func (c *Chain) Then(handler http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}
	return handler
}

// Handlers returns the chain as plain functions, ready for chi's Use.
func (c *Chain) Handlers() []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, len(c.middlewares))
	for i, m := range c.middlewares {
		out[i] = m
	}
	return out
}

// Append creates a new chain by appending middleware to the current chain
func (c *Chain) Append(middlewares ...Middleware) *Chain {
	newMiddlewares := make([]Middleware, len(c.middlewares)+len(middlewares))
	copy(newMiddlewares, c.middlewares)
	copy(newMiddlewares[len(c.middlewares):], middlewares)
	return &Chain{middlewares: newMiddlewares}
}

func skipped(paths []string, r *http.Request) bool {
	for _, p := range paths {
		if r.URL.Path == p {
			return true
		}
	}
	return false
}
