package request

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/minis3/pkg/logger"
	"github.com/dmitrymomot/minis3/pkg/signer"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

// CallerOption configures a Caller.
type CallerOption func(*Caller)

// WithLogger sets the logger for request tracing. Every Do call runs with an
// operation id in its context; build the logger with OperationIDExtractor
// to have it attached to the records.
func WithLogger(l *slog.Logger) CallerOption {
	return func(c *Caller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides time.Now for elapsed-time logging.
func WithClock(now func() time.Time) CallerOption {
	return func(c *Caller) {
		if now != nil {
			c.now = now
		}
	}
}

// Caller builds, signs and executes operations. It is safe for concurrent
// use.
type Caller struct {
	signer   signer.Signer
	exec     transport.Executor
	log      *slog.Logger
	now      func() time.Time
	creds    signer.Credentials
	endpoint Endpoint
}

// NewCaller returns a Caller.
func NewCaller(endpoint Endpoint, creds signer.Credentials, s signer.Signer, exec transport.Executor, opts ...CallerOption) *Caller {
	c := &Caller{
		endpoint: endpoint,
		creds:    creds,
		signer:   s,
		exec:     exec,
		log:      logger.NewNope(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the endpoint requests are sent to.
func (c *Caller) Endpoint() Endpoint { return c.endpoint }

// Build returns the unsigned request for op.
func (c *Caller) Build(op Operation) (*signer.Request, error) {
	req, err := signer.NewRequest(op.Method, c.endpoint.URL(op.Bucket, op.Key, op.Query), nil)
	if err != nil {
		return nil, err
	}
	for k, vals := range op.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Host", req.URL.Host)
	req.Body = op.Body
	return req, nil
}

// Sign builds op and signs it without sending it. V2 requests without a
// Date or x-amz-date header get a Date from the caller clock, since V2
// signs the date but never sets one.
func (c *Caller) Sign(op Operation) (*signer.Request, error) {
	req, err := c.Build(op)
	if err != nil {
		return nil, err
	}
	if c.signer.Version() == signer.VersionV2 && !hasHeader(req, "Date") && !hasHeader(req, "X-Amz-Date") {
		req.Header.Set("Date", c.now().UTC().Format(http.TimeFormat))
	}
	if c.signer.Version() == signer.VersionV4 && !hasHeader(req, "X-Amz-Content-Sha256") {
		hash, err := signer.PayloadHash(req.Body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Amz-Content-Sha256", hash)
	}
	return c.signer.Sign(req, c.creds)
}

// Do builds, signs and executes op.
func (c *Caller) Do(ctx context.Context, op Operation) (*transport.Response, error) {
	ctx, _ = ensureOperationID(ctx)

	signed, err := c.Sign(op)
	if err != nil {
		c.log.ErrorContext(ctx, "sign request",
			slog.String("method", op.Method),
			slog.String("bucket", op.Bucket),
			slog.String("key", op.Key),
			slog.Any("error", err))
		return nil, err
	}

	start := c.now()
	resp, err := c.exec.Do(ctx, signed)
	attrs := []any{
		slog.String("method", op.Method),
		slog.String("bucket", op.Bucket),
		slog.String("key", op.Key),
		slog.Duration("elapsed", c.now().Sub(start)),
	}
	if err != nil {
		c.log.DebugContext(ctx, "s3 call failed", append(attrs, slog.Any("error", err))...)
		return nil, err
	}
	c.log.DebugContext(ctx, "s3 call", append(attrs, slog.Int("status", resp.StatusCode))...)
	return resp, nil
}

func hasHeader(req *signer.Request, name string) bool {
	for k := range req.Header {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
