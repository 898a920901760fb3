package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON logger writing to w at the given level. A nil writer
// means os.Stderr, keeping stdout free for command output.
func New(w io.Writer, level slog.Leveler, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(jsonHandler(w, level), extractors...))
}

// NewText is like New but uses the human-readable text format.
func NewText(w io.Writer, level slog.Leveler, extractors ...ContextExtractor) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewLogHandlerDecorator(h, extractors...))
}

func jsonHandler(w io.Writer, level slog.Leveler) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
