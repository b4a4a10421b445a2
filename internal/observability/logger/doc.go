// Package logger wraps a process-wide zap logger with request scoping.
//
// Init is called once from the CLI. Handlers and services then log through
// the logger stored in the request context:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.connect"))
//	log.Info("connect resolved", logger.Provider("github"), logger.Outcome("existing_user"))
//
// When no logger was injected, From falls back to the singleton.
package logger
