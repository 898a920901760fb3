package logger

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

const (
	flushTimeout       = 2 * time.Second
	defaultEnvironment = "production"
)

// SentryConfig holds Sentry integration settings.
type SentryConfig struct {
	DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
	// Environment defaults to "production".
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT"`
	// MinLevel selects what is stored in Sentry: slog.LevelWarn sends
	// warnings and errors, slog.LevelError only errors.
	MinLevel slog.Level `yaml:"-"`
}

// NewWithSentry creates a logger writing JSON to w and, when cfg.DSN is set,
// forwarding warnings and errors to Sentry. The returned flush function
// waits for buffered events and must be called before the process exits;
// it is a no-op when Sentry is disabled.
func NewWithSentry(w io.Writer, level slog.Leveler, cfg SentryConfig, extractors ...ContextExtractor) (*slog.Logger, func()) {
	base := jsonHandler(w, level)
	noop := func() {}

	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(base, extractors...)), noop
	}

	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(base, extractors...)), noop
	}

	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	combined := newMultiHandler(base, sentryHandler)
	return slog.New(NewLogHandlerDecorator(combined, extractors...)), func() {
		sentry.Flush(flushTimeout)
	}
}
