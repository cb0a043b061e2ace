// Package logger provides structured logging built on log/slog with
// typed attribute helpers for consistent log output.
//
// # Setup
//
// New builds a logger from environment-driven configuration:
//
//	log := logger.New(cfg.Log)
//	log.Info("daemon started", logger.Component("devpubd"))
//
// # Attributes
//
// Attribute helpers keep keys consistent across the codebase and are safe
// to call with zero values:
//
//	log.Error("publish failed",
//		logger.Topic(name),
//		logger.Handle(id),
//		logger.Error(err),
//	)
//
// Helpers returning an empty slog.Attr for nil or empty inputs are silently
// dropped by slog, so call sites need no nil checks.
package logger
