// Package logger builds configured log/slog loggers with functional options
// and provides typed attribute helpers so log keys stay consistent across
// the codebase.
//
//	log := logger.New(logger.WithEnvironment(cfg.Environment, "notifyd"))
//	logger.SetAsDefault(log)
//
//	log.Info("member connected", logger.UserID(email), logger.SessionID(id))
package logger
