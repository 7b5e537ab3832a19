// Package logging provides structured logging for the chardev daemon.
//
// It wraps log/slog with daemon-wide defaults: a service field, the
// build version, configurable level, and JSON or text output. Packages
// receive component-scoped loggers via With:
//
//	log := logging.New(cfg.Logging, version)
//	devLog := log.With("component", "chardev")
//
// Default() supplies a stdout JSON logger for use before configuration
// is loaded.
package logging
