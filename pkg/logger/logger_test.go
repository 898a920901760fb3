package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

var timeZero time.Time

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNew_ExtractsContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, StringExtractor("op_id", ctxKey{}), nil)

	ctx := context.WithValue(context.Background(), ctxKey{}, "op-1")
	log.DebugContext(ctx, "s3 request", slog.String("method", "PUT"))

	rec := decode(t, &buf)
	assert.Equal(t, "s3 request", rec["msg"])
	assert.Equal(t, "PUT", rec["method"])
	assert.Equal(t, "op-1", rec["op_id"])
}

func TestNew_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Equal(t, "shown", decode(t, &buf)["msg"])
}

func TestNewText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewText(&buf, slog.LevelInfo, StringExtractor("op_id", ctxKey{}))
	ctx := context.WithValue(context.Background(), ctxKey{}, "op-9")
	log.InfoContext(ctx, "bucket created", slog.String("bucket", "media"))

	line := buf.String()
	assert.Contains(t, line, "msg=\"bucket created\"")
	assert.Contains(t, line, "bucket=media")
	assert.Contains(t, line, "op_id=op-9")
}

func TestStringExtractor(t *testing.T) {
	t.Parallel()

	ex := StringExtractor("op_id", ctxKey{})

	_, ok := ex(context.Background())
	assert.False(t, ok)

	_, ok = ex(context.WithValue(context.Background(), ctxKey{}, ""))
	assert.False(t, ok)

	_, ok = ex(context.WithValue(context.Background(), ctxKey{}, 42))
	assert.False(t, ok)

	attr, ok := ex(context.WithValue(context.Background(), ctxKey{}, "x"))
	require.True(t, ok)
	assert.Equal(t, "op_id", attr.Key)
	assert.Equal(t, "x", attr.Value.String())
}

func TestDecorator_KeepsExtractorsAcrossWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, StringExtractor("op_id", ctxKey{})).
		With(slog.String("component", "listing")).
		WithGroup("page")

	ctx := context.WithValue(context.Background(), ctxKey{}, "op-2")
	log.InfoContext(ctx, "fetched", slog.Int("n", 3))

	rec := decode(t, &buf)
	assert.Equal(t, "listing", rec["component"])
	page, ok := rec["page"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 3, page["n"], 0)
	assert.Equal(t, "op-2", page["op_id"])
}

func TestNewLogHandlerDecorator_NoExtractors(t *testing.T) {
	t.Parallel()

	h := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, NewLogHandlerDecorator(h, nil, nil))
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	h := newMultiHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		failingHandler{slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	log.Info("only a")
	assert.Contains(t, a.String(), "only a")
	assert.Zero(t, b.Len())

	a.Reset()
	err := h.Handle(context.Background(), slog.NewRecord(timeZero, slog.LevelError, "both", 0))
	require.EqualError(t, err, "sink down")
	assert.Contains(t, a.String(), "both")
	assert.Contains(t, b.String(), "both")
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := NewNope()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Error("discarded")
}

func TestNewWithSentry_NoDSN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, flush := NewWithSentry(&buf, slog.LevelInfo, SentryConfig{}, StringExtractor("op_id", ctxKey{}))
	defer flush()

	log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "op-3"), "hello")
	rec := decode(t, &buf)
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "op-3", rec["op_id"])
}
