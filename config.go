package minis3

import (
	"time"

	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/signer"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

// Config holds the connection settings of a Client.
// Embed it in an application config for YAML and caarlos0/env parsing.
type Config struct {
	// Endpoint is the S3 host, optionally with port (default: s3.amazonaws.com).
	// A scheme prefix is ignored; use DisableTLS for plain HTTP.
	Endpoint string `yaml:"endpoint" env:"MINIS3_ENDPOINT"`

	// AccessKey is the access key id. Required unless a credentials
	// provider is passed to New.
	AccessKey string `yaml:"access_key" env:"MINIS3_ACCESS_KEY"`

	// SecretKey is the secret access key.
	SecretKey string `yaml:"secret_key" env:"MINIS3_SECRET_KEY"`

	// Region is the signing region. Detected from Endpoint when empty.
	Region string `yaml:"region" env:"MINIS3_REGION"`

	// Bucket is the default bucket for object operations (optional).
	Bucket string `yaml:"bucket" env:"MINIS3_BUCKET"`

	// SignatureVersion is "s3v4" (default) or "s3" for legacy V2 signing.
	SignatureVersion string `yaml:"signature_version" env:"MINIS3_SIGNATURE_VERSION"`

	// Timeout bounds each request (default: 60s).
	Timeout time.Duration `yaml:"timeout" env:"MINIS3_TIMEOUT"`

	// MaxBodySize caps how many response bytes are read (default: 64MB).
	MaxBodySize int64 `yaml:"max_body_size" env:"MINIS3_MAX_BODY_SIZE"`

	// DisableTLS switches to plain HTTP, e.g. for a local MinIO.
	DisableTLS bool `yaml:"disable_tls" env:"MINIS3_DISABLE_TLS"`

	// PathStyle addresses buckets as host/bucket/key instead of
	// bucket.host/key (required for most self-hosted servers).
	PathStyle bool `yaml:"path_style" env:"MINIS3_PATH_STYLE"`
}

// Default configuration values.
const (
	DefaultEndpoint         = signer.DefaultEndpoint
	DefaultSignatureVersion = signer.VersionV4
	DefaultTimeout          = transport.DefaultTimeout
	DefaultMaxBodySize      = transport.DefaultMaxBodySize
)

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.SignatureVersion == "" {
		c.SignatureVersion = DefaultSignatureVersion
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
}

// validate checks the settings that do not depend on options.
func (c *Config) validate() error {
	switch c.SignatureVersion {
	case signer.VersionV2, signer.VersionV4:
	default:
		return s3err.Configuration("unsupported signature version %q", c.SignatureVersion)
	}
	if c.Timeout < 0 {
		return s3err.Configuration("timeout %s is negative", c.Timeout)
	}
	if c.MaxBodySize < 0 {
		return s3err.Configuration("max body size %d is negative", c.MaxBodySize)
	}
	return nil
}
