package signer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// DefaultEndpoint is the global AWS S3 endpoint.
const DefaultEndpoint = "s3.amazonaws.com"

// Credentials is an immutable access-key/secret-key/region/endpoint tuple.
// The zero value is not usable; construct with NewCredentials.
type Credentials struct {
	accessKey    string
	secretKey    string
	sessionToken string
	region       string
	endpoint     string
}

// NewCredentials returns credentials for the given endpoint. An empty region
// is resolved from the endpoint at signing time (see RegionFromEndpoint).
func NewCredentials(accessKey, secretKey, region, endpoint string) Credentials {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return Credentials{
		accessKey: accessKey,
		secretKey: secretKey,
		region:    region,
		endpoint:  endpoint,
	}
}

// CredentialsFromProvider retrieves keys from an aws-sdk-go-v2 credentials
// provider (static, environment, shared config, ...). A session token, when
// present, is sent as X-Amz-Security-Token on every signed request.
func CredentialsFromProvider(ctx context.Context, p aws.CredentialsProvider, region, endpoint string) (Credentials, error) {
	if p == nil {
		return Credentials{}, s3err.Configuration("credentials provider is nil")
	}
	v, err := p.Retrieve(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: retrieve credentials: %v", s3err.ErrConfiguration, err)
	}
	c := NewCredentials(v.AccessKeyID, v.SecretAccessKey, region, endpoint)
	c.sessionToken = v.SessionToken
	return c, nil
}

// AccessKey returns the access key id.
func (c Credentials) AccessKey() string { return c.accessKey }

// SecretKey returns the secret access key.
func (c Credentials) SecretKey() string { return c.secretKey }

// SessionToken returns the temporary session token, if any.
func (c Credentials) SessionToken() string { return c.sessionToken }

// Region returns the explicitly configured region, possibly empty.
func (c Credentials) Region() string { return c.region }

// Endpoint returns the endpoint host the credentials were issued for.
func (c Credentials) Endpoint() string { return c.endpoint }

// SigningRegion returns the configured region or, when none was given, the
// region detected from the endpoint.
func (c Credentials) SigningRegion() string {
	if c.region != "" {
		return c.region
	}
	return RegionFromEndpoint(c.endpoint)
}

// String hides the secret so credentials are safe to log.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKey: %s, Region: %s, Endpoint: %s}", c.accessKey, c.SigningRegion(), c.endpoint)
}
