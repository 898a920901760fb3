package request

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/minis3/pkg/transport"
)

// Operation is one S3 API call before it is addressed and signed.
type Operation struct {
	Query  url.Values
	Header http.Header
	// Body is nil for requests without payload.
	Body   io.ReadSeeker
	Method string
	Bucket string
	Key    string
}

// Doer performs operations. Caller is the production implementation.
type Doer interface {
	Do(ctx context.Context, op Operation) (*transport.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(ctx context.Context, op Operation) (*transport.Response, error)

// Do calls f(ctx, op).
func (f DoerFunc) Do(ctx context.Context, op Operation) (*transport.Response, error) {
	return f(ctx, op)
}
