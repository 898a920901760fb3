package minis3

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/minis3/pkg/listing"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	executor   transport.Executor
	httpClient aws.HTTPClient
	provider   aws.CredentialsProvider
	registerer prometheus.Registerer
	log        *slog.Logger
	now        func() time.Time
}

// WithExecutor replaces the HTTP executor, e.g. with a test double.
// Timeout, MaxBodySize and metrics settings are ignored then.
func WithExecutor(e transport.Executor) Option {
	return func(o *clientOptions) {
		o.executor = e
	}
}

// WithHTTPClient sets the HTTP client used by the default executor.
func WithHTTPClient(c aws.HTTPClient) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithCredentialsProvider takes the keys from an aws-sdk-go-v2 provider
// instead of Config.AccessKey and Config.SecretKey. The provider is asked
// once, in New.
func WithCredentialsProvider(p aws.CredentialsProvider) Option {
	return func(o *clientOptions) {
		o.provider = p
	}
}

// WithMetrics registers the request metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *clientOptions) {
		o.registerer = reg
	}
}

// WithLogger sets the client logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock overrides the time source used for V4 request dates.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// CallOption configures a single client call. Options that do not apply to
// a call are ignored.
type CallOption func(*callOptions)

type callOptions struct {
	header       http.Header
	metadata     map[string]string
	bucket       string
	sourceBucket string
	contentType  string
	directive    types.MetadataDirective
	allowedTypes []string
	listOptions  []listing.Option
	partSize     int64
	maxAge       time.Duration
	workers      int
	public       bool
	noRewind     bool
}

func newCallOptions(opts []CallOption) *callOptions {
	o := &callOptions{
		header:    make(http.Header),
		metadata:  make(map[string]string),
		directive: types.MetadataDirectiveCopy,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// InBucket runs the call against bucket instead of Config.Bucket.
func InBucket(bucket string) CallOption {
	return func(o *callOptions) {
		o.bucket = bucket
	}
}

// FromBucket sets the source bucket of Copy. Defaults to the target bucket.
func FromBucket(bucket string) CallOption {
	return func(o *callOptions) {
		o.sourceBucket = bucket
	}
}

// WithPublic makes the object (or bucket) readable by anyone.
func WithPublic() CallOption {
	return func(o *callOptions) {
		o.public = true
	}
}

// WithContentType overrides the guessed content type.
func WithContentType(ct string) CallOption {
	return func(o *callOptions) {
		o.contentType = ct
	}
}

// WithMetadata adds user metadata, sent as x-amz-meta-* headers.
// Keys are lowercased.
func WithMetadata(md map[string]string) CallOption {
	return func(o *callOptions) {
		for k, v := range md {
			o.metadata[k] = v
		}
	}
}

// CacheForever is the WithCacheControl duration for immutable objects.
const CacheForever = 365 * 24 * time.Hour

// WithCacheControl sets a Cache-Control max-age on the stored object,
// marked public or private to match WithPublic.
func WithCacheControl(maxAge time.Duration) CallOption {
	return func(o *callOptions) {
		o.maxAge = maxAge
	}
}

// WithoutRewind uploads the body from its current offset. By default Put
// seeks the body to its start first.
func WithoutRewind() CallOption {
	return func(o *callOptions) {
		o.noRewind = true
	}
}

// WithHeaders adds raw request headers. They take precedence over the
// headers the client computes.
func WithHeaders(h http.Header) CallOption {
	return func(o *callOptions) {
		for k, vals := range h {
			for _, v := range vals {
				o.header.Add(k, v)
			}
		}
	}
}

// WithMetadataDirective chooses whether Copy keeps the source metadata
// (types.MetadataDirectiveCopy, the default) or replaces it with the
// metadata of this call (types.MetadataDirectiveReplace).
func WithMetadataDirective(d types.MetadataDirective) CallOption {
	return func(o *callOptions) {
		o.directive = d
	}
}

// WithAllowedTypes rejects uploads whose content type matches none of the
// patterns. Patterns may use wildcards like "image/*".
func WithAllowedTypes(patterns ...string) CallOption {
	return func(o *callOptions) {
		o.allowedTypes = append(o.allowedTypes, patterns...)
	}
}

// WithListOptions passes options to the listing pager.
func WithListOptions(opts ...listing.Option) CallOption {
	return func(o *callOptions) {
		o.listOptions = append(o.listOptions, opts...)
	}
}

// WithPartSize sets the part size of UploadFile (default: 8MB).
func WithPartSize(n int64) CallOption {
	return func(o *callOptions) {
		o.partSize = n
	}
}

// WithWorkers sets how many parts UploadFile sends at once (default: 4).
func WithWorkers(n int) CallOption {
	return func(o *callOptions) {
		o.workers = n
	}
}
