// Package health provides HTTP probe handlers for liveness and readiness
// checks.
//
// Liveness reports only that the process is serving requests. Readiness runs
// the supplied dependency checks and fails with 503 when any of them errors:
//
//	mux.HandleFunc("GET /health/live", health.Liveness)
//	mux.Handle("GET /health/ready", health.Readiness(log, checks...))
package health
