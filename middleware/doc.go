// Package middleware provides net/http middleware for the control-plane API.
//
// Middleware are plain func(http.Handler) http.Handler values composed with
// Chain, which applies them so the first middleware runs first:
//
//	handler := middleware.Chain(
//		middleware.RequestID(),
//		middleware.Logging(log),
//	)(mux)
package middleware
