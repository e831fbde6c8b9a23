package codegen

import (
	"net/http"

	"github.com/conduit-lang/crudkit/internal/schema"
)

// Route describes one generated endpoint relative to the resource mount
// point.
type Route struct {
	Method    string
	Pattern   string
	Handler   string
	Operation string
}

// Routes lists the endpoints generated for res in registration order.
func Routes(res *schema.Resource) []Route {
	opts := res.Options
	var routes []Route
	if opts.Create {
		routes = append(routes, Route{Method: http.MethodPost, Pattern: "/", Handler: "Create", Operation: "create"})
	}
	if opts.Read {
		routes = append(routes, Route{Method: http.MethodGet, Pattern: "/{id}", Handler: "Read", Operation: "read"})
	}
	if opts.Update {
		routes = append(routes,
			Route{Method: http.MethodPatch, Pattern: "/{id}", Handler: "Patch", Operation: "update"},
			Route{Method: http.MethodPut, Pattern: "/{id}", Handler: "Put", Operation: "update"},
		)
	}
	if opts.Delete {
		routes = append(routes, Route{Method: http.MethodDelete, Pattern: "/{id}", Handler: "Delete", Operation: "delete"})
	}
	if opts.List {
		routes = append(routes, Route{Method: http.MethodGet, Pattern: "/", Handler: "List", Operation: "list"})
	}
	return routes
}
