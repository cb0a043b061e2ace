package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain builds a single middleware from a stack, applied so the first
// middleware in the list runs first.
func Chain(middlewares ...Middleware) Middleware {
	return func(endpoint http.Handler) http.Handler {
		handler := endpoint
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}
