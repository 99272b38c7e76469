// Package middleware provides the HTTP middleware stack and the CORS, request
// logging and bearer-token middleware mounted on the API module.
package middleware

import "net/http"

// Func wraps an http.Handler with additional behavior.
type Func func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware. The first Func added
// is the outermost wrapper.
type System interface {
	Use(fns ...Func)
	Apply(handler http.Handler) http.Handler
	Len() int
}

type stack struct {
	fns []Func
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fns ...Func) {
	for _, fn := range fns {
		if fn != nil {
			s.fns = append(s.fns, fn)
		}
	}
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.fns) - 1; i >= 0; i-- {
		handler = s.fns[i](handler)
	}
	return handler
}

func (s *stack) Len() int {
	return len(s.fns)
}
