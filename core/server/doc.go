// Package server provides an HTTP server with graceful shutdown, configurable
// options, and sensible defaults. It wraps the standard http.Server with the
// lifecycle plumbing the devpub daemon needs.
//
// # Key Features
//
//   - Graceful shutdown with configurable timeout
//   - Thread-safe concurrent access protection
//   - Structured logging integration
//   - Production-ready default timeouts
//   - Simple configuration via functional options
//
// # Basic Usage
//
// Create and run a server with default configuration:
//
//	import (
//		"context"
//		"net/http"
//
//		"github.com/devpubio/devpub/core/server"
//	)
//
//	func main() {
//		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//			w.Write([]byte("ok"))
//		})
//
//		ctx := context.Background()
//		if err := server.Run(ctx, ":8080", handler); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Server Configuration
//
// Configure the server with functional options, or load a Config from the
// environment and pass it to NewFromConfig:
//
//	srv := server.New(":8080",
//		server.WithShutdownTimeout(60*time.Second),
//		server.WithLogger(logger),
//	)
//
// Start blocks until the context is cancelled or the listener fails; Stop
// drains in-flight requests within the shutdown timeout. Server.Run returns a
// function suitable for errgroup-style coordinated lifecycles.
package server
