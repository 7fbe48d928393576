// Package logger provides a singleton Zap logger, trimmed from the
// teacher's internal/observability/logger down to the singleton and its
// environment/level config: this module has no per-request context to
// scope a logger to, so the context-scoping half of the teacher's package
// is dropped.
//
// Init (once, in a cmd's main):
//
//	logger.Init(logger.Config{Env: "prod", Level: "info"})
//	defer logger.Sync()
//
// Elsewhere:
//
//	logger.Named("verifier").Info("denied", zap.String("reason", string(reason)))
package logger
