package signer

import (
	"time"

	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// Supported signature versions, named as S3 clients usually spell them.
const (
	VersionV2 = "s3"
	VersionV4 = "s3v4"
)

// Signer signs requests for one protocol version.
// Implementations are stateless and safe for concurrent use.
type Signer interface {
	// Version returns VersionV2 or VersionV4.
	Version() string

	// Sign returns a copy of req carrying an Authorization header. The input
	// request is not modified. The only possible failure is an I/O error
	// while hashing a stream body.
	Sign(req *Request, creds Credentials) (*Request, error)
}

// Option configures a Signer.
type Option func(*options)

type options struct {
	now           func() time.Time
	contentSHA256 bool
}

// WithClock overrides the wall clock used to stamp V4 requests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithContentSHA256 makes the V4 signer add an x-amz-content-sha256 header
// holding the payload hash when the request does not carry one. Amazon S3
// requires it; most S3-compatible servers accept requests without it.
// Ignored by V2.
func WithContentSHA256() Option {
	return func(o *options) {
		o.contentSHA256 = true
	}
}

// New returns the signer for version. Unsupported versions fail here with
// s3err.ErrConfiguration, never at signing time.
func New(version string, opts ...Option) (Signer, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	switch version {
	case VersionV2:
		return &v2Signer{}, nil
	case VersionV4:
		return &v4Signer{now: o.now, contentSHA256: o.contentSHA256}, nil
	default:
		return nil, s3err.Configuration("unsupported signature version %q (want %q or %q)", version, VersionV2, VersionV4)
	}
}

// MustNew is like New but panics on an unsupported version.
// Intended for package-level initialization with constant versions.
func MustNew(version string, opts ...Option) Signer {
	s, err := New(version, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func addSecurityToken(r *Request, creds Credentials) {
	if creds.sessionToken == "" {
		return
	}
	if _, ok := headerValues(r.Header, "X-Amz-Security-Token"); !ok {
		r.Header.Set("X-Amz-Security-Token", creds.sessionToken)
	}
}
