package listing

import (
	"log/slog"

	"github.com/dmitrymomot/minis3/pkg/logger"
)

// Policy decides what happens to records that cannot be parsed.
type Policy int

const (
	// DropMalformed skips bad records and keeps listing.
	DropMalformed Policy = iota
	// FailOnMalformed ends the sequence with a protocol error.
	FailOnMalformed
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case DropMalformed:
		return "drop"
	case FailOnMalformed:
		return "fail"
	default:
		return "unknown"
	}
}

// DefaultPageSize is sent as max-uploads and max-parts when no page size is
// configured.
const DefaultPageSize = 1000

// Option configures a lister. Options that do not apply to a lister are
// ignored by it.
type Option func(*options)

type options struct {
	log              *slog.Logger
	prefix           string
	marker           string
	delimiter        string
	encodingType     string
	keyMarker        string
	uploadIDMarker   string
	pageSize         int
	partNumberMarker int
	policy           Policy
}

func newOptions(opts []Option) options {
	o := options{log: logger.NewNope()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPrefix limits objects and uploads to keys starting with prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithMarker starts an object listing after key.
func WithMarker(key string) Option {
	return func(o *options) { o.marker = key }
}

// WithDelimiter groups object keys sharing a prefix up to delimiter into a
// single prefix record.
func WithDelimiter(d string) Option {
	return func(o *options) { o.delimiter = d }
}

// WithPageSize sets max-keys, max-uploads or max-parts.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithEncodingType asks the server to encode keys in responses. Only "url"
// is defined by S3; keys are decoded before they are returned.
func WithEncodingType(t string) Option {
	return func(o *options) { o.encodingType = t }
}

// WithKeyMarker and WithUploadIDMarker seed the cursor of an upload listing.
func WithKeyMarker(key string) Option {
	return func(o *options) { o.keyMarker = key }
}

// WithUploadIDMarker seeds the upload id part of an upload listing cursor.
func WithUploadIDMarker(id string) Option {
	return func(o *options) { o.uploadIDMarker = id }
}

// WithPartNumberMarker starts a part listing after part n.
func WithPartNumberMarker(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.partNumberMarker = n
		}
	}
}

// WithPolicy sets the malformed-record policy. The default is DropMalformed.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger that reports dropped records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
