// Package logger builds the application's zap logger.
//
// Level and encoding come from the log section of the configuration. HTTP
// handlers derive request scoped loggers with WithRayID, which attaches the
// ray id set by the rayid middleware so every line of one request can be
// correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Sync failed", zap.Error(err))
package logger
