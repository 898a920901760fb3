package minis3

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/dmitrymomot/minis3/pkg/logger"
	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/signer"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

// Client performs S3 operations. It is safe for concurrent use.
type Client struct {
	caller *request.Caller
	log    *slog.Logger
	creds  signer.Credentials
	cfg    Config
}

// New creates a Client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := &clientOptions{
		log: logger.NewNope(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	provider := o.provider
	if provider == nil {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, s3err.Configuration("access key and secret key are required")
		}
		provider = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}
	creds, err := signer.CredentialsFromProvider(context.Background(), provider, cfg.Region, cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	sgn, err := signer.New(cfg.SignatureVersion, signer.WithClock(o.now))
	if err != nil {
		return nil, err
	}

	exec := o.executor
	if exec == nil {
		exec = newExecutor(cfg, o)
	}

	endpoint := request.Endpoint{
		Host:      cfg.Endpoint,
		TLS:       !cfg.DisableTLS,
		PathStyle: cfg.PathStyle,
	}

	return &Client{
		caller: request.NewCaller(endpoint, creds, sgn, exec, request.WithLogger(o.log), request.WithClock(o.now)),
		log:    o.log,
		creds:  creds,
		cfg:    cfg,
	}, nil
}

func newExecutor(cfg Config, o *clientOptions) transport.Executor {
	topts := []transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithMaxBodySize(cfg.MaxBodySize),
		transport.WithLogger(o.log),
	}
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if o.registerer != nil {
		topts = append(topts, transport.WithMetrics(o.registerer))
	}
	return transport.NewHTTPExecutor(topts...)
}

// Caller returns the underlying request caller, for operations the client
// does not wrap and for inspecting signed requests.
func (c *Client) Caller() *request.Caller {
	return c.caller
}

// Region returns the region requests are signed for.
func (c *Client) Region() string {
	return c.creds.SigningRegion()
}

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() Config {
	return c.cfg
}

// bucket resolves the bucket of a call.
func (c *Client) bucket(o *callOptions) (string, error) {
	if o.bucket != "" {
		return o.bucket, nil
	}
	if c.cfg.Bucket != "" {
		return c.cfg.Bucket, nil
	}
	return "", s3err.Invalid("bucket", s3err.CodeRequired, "no bucket given and no default bucket configured")
}

// target resolves bucket and checks key.
func (c *Client) target(key string, o *callOptions) (string, error) {
	if key == "" {
		return "", s3err.Invalid("key", s3err.CodeRequired, "object key is required")
	}
	return c.bucket(o)
}
