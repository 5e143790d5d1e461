// Package logger provides typed slog.Attr helpers for consistent structured
// logging across the module.
//
// Helpers that take identifiers or errors return an empty Attr for zero
// values, so call sites never need nil checks:
//
//	log.Info("refresh failed",
//		logger.Component("session"),
//		logger.Error(err), // safe even when err is nil
//	)
package logger
