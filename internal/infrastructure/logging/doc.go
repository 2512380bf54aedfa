// Package logging configures the service's log/slog logger.
//
// Production runs emit JSON, development runs emit text. Every record
// carries service and version attributes, and each subsystem logs through
// a child from Component so its records can be filtered:
//
//	log := logging.New(cfg.Logging, version)
//	log.Component("routing").Info("route made", "source", "CAM1")
//
// Tokens and the JWT secret are never logged.
package logging
