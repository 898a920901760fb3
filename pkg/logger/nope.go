package logger

import (
	"log/slog"
)

// NewNope creates a logger that discards everything.
// It is the default for every component that accepts a logger.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
