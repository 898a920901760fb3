// Package logger builds the slog loggers used by minis3.
//
// Library code defaults to NewNope so nothing is printed unless the caller
// opts in. The CLI uses New, or NewWithSentry when a DSN is configured:
//
//	log := logger.New(os.Stderr, slog.LevelDebug, request.OperationIDExtractor)
//	log.DebugContext(ctx, "s3 request", slog.String("method", "PUT"))
//	// {"level":"DEBUG","msg":"s3 request","method":"PUT","op_id":"8c1f..."}
//
// # Context extractors
//
// A ContextExtractor pulls one attribute out of a context on every log call.
// LogHandlerDecorator wraps any slog.Handler and appends the extracted
// attributes before delegating, so request-scoped values such as the
// operation id show up without threading loggers through call chains.
//
// # Sentry
//
// NewWithSentry fans records out to the JSON handler and to Sentry.
// Errors become Sentry issues; warnings are stored as logs unless MinLevel
// is slog.LevelError. An empty DSN or a failed sentry.Init falls back to
// the JSON handler alone.
package logger
