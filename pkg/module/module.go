// Package module mounts prefixed HTTP sub-routers, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/docket/pkg/middleware"
)

// Module is an HTTP handler that strips its prefix and delegates to an inner router
// with its own middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a Module with the given single-level prefix (e.g. "/api").
// Panics if the prefix is empty, missing a leading slash, or multi-level.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack in wrapping order.
func (m *Module) Use(mws ...middleware.Func) {
	m.middleware.Use(mws...)
}

// Serve strips the module prefix from the request path and dispatches to the
// inner router through the middleware stack.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	inner := req.Clone(req.Context())
	inner.URL.Path = path
	inner.URL.RawPath = ""

	m.middleware.Apply(m.router).ServeHTTP(w, inner)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
