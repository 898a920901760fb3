package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/minis3/pkg/logger"
	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/signer"
)

// Default executor settings.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultMaxBodySize = 64 << 20 // 64MB
)

// ErrBodyTooLarge is the cause of a TransportError whose response body
// exceeded the configured limit.
var ErrBodyTooLarge = errors.New("s3: response body exceeds size limit")

// Executor sends a signed request and returns the complete response.
// Implementations must be safe for concurrent use.
type Executor interface {
	Do(ctx context.Context, req *signer.Request) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *signer.Request) (*Response, error)

// Do calls f(ctx, req).
func (f ExecutorFunc) Do(ctx context.Context, req *signer.Request) (*Response, error) {
	return f(ctx, req)
}

// Option configures an HTTPExecutor.
type Option func(*HTTPExecutor)

// WithHTTPClient replaces the underlying HTTP client. Any aws.HTTPClient
// works, including *http.Client.
func WithHTTPClient(c aws.HTTPClient) Option {
	return func(e *HTTPExecutor) {
		if c != nil {
			e.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(e *HTTPExecutor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxBodySize limits how many response bytes are read.
func WithMaxBodySize(n int64) Option {
	return func(e *HTTPExecutor) {
		if n > 0 {
			e.maxBodySize = n
		}
	}
}

// WithMetrics records request counters and latencies in reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *HTTPExecutor) {
		e.metrics = NewMetrics(reg)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *HTTPExecutor) {
		if l != nil {
			e.log = l
		}
	}
}

// HTTPExecutor is the net/http based Executor.
type HTTPExecutor struct {
	client      aws.HTTPClient
	metrics     *Metrics
	log         *slog.Logger
	timeout     time.Duration
	maxBodySize int64
}

// NewHTTPExecutor returns an executor. Without WithHTTPClient it uses an
// aws-sdk-go-v2 BuildableClient with the configured timeout.
func NewHTTPExecutor(opts ...Option) *HTTPExecutor {
	e := &HTTPExecutor{
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		log:         logger.NewNope(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = awshttp.NewBuildableClient().WithTimeout(e.timeout)
	}
	return e
}

// Do sends req. Non-2xx answers are returned as *s3err.TransportError
// together with a nil response.
func (e *HTTPExecutor) Do(ctx context.Context, req *signer.Request) (*Response, error) {
	if req == nil || req.URL == nil {
		return nil, s3err.Configuration("request without URL")
	}
	rawURL := req.URL.String()
	fail := func(status int, cause error) *s3err.TransportError {
		return &s3err.TransportError{Method: req.Method, URL: rawURL, StatusCode: status, Err: cause}
	}

	httpReq, err := newHTTPRequest(ctx, req)
	if err != nil {
		return nil, fail(0, err)
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.metrics.observe(req.Method, 0, time.Since(start))
		e.log.DebugContext(ctx, "s3 request failed",
			slog.String("method", req.Method),
			slog.String("url", rawURL),
			slog.Any("error", err))
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize+1))
	elapsed := time.Since(start)
	e.metrics.observe(req.Method, resp.StatusCode, elapsed)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("read response body: %w", err))
	}
	if int64(len(body)) > e.maxBodySize {
		return nil, fail(resp.StatusCode, ErrBodyTooLarge)
	}

	e.log.DebugContext(ctx, "s3 request",
		slog.String("method", req.Method),
		slog.String("url", rawURL),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", elapsed))

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if !out.OK() {
		return nil, &s3err.TransportError{
			Method:     req.Method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			APIError:   apiErrorFor(resp.StatusCode, body),
		}
	}
	return out, nil
}

// newHTTPRequest converts a signed request. The Host header moves to
// http.Request.Host and the body is sent with a fixed Content-Length.
func newHTTPRequest(ctx context.Context, req *signer.Request) (*http.Request, error) {
	var (
		body   io.Reader
		length int64
	)
	if req.Body != nil {
		n, err := remaining(req.Body)
		if err != nil {
			return nil, err
		}
		length = n
		if n > 0 {
			body = io.LimitReader(req.Body, n)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build http request: %w", err)
	}
	httpReq.ContentLength = length
	if length == 0 && req.Body != nil {
		httpReq.Body = http.NoBody
	}

	for k, vals := range req.Header {
		switch {
		case strings.EqualFold(k, "Host"):
			if len(vals) > 0 {
				httpReq.Host = vals[0]
			}
		case strings.EqualFold(k, "Content-Length"):
			// Derived from the body.
		default:
			for _, v := range vals {
				httpReq.Header.Add(k, v)
			}
		}
	}
	return httpReq, nil
}

// remaining returns the number of unread bytes in r without moving it.
func remaining(r io.Seeker) (int64, error) {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("body position: %w", err)
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("body size: %w", err)
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind body: %w", err)
	}
	return end - cur, nil
}
