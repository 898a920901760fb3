package signer

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultRegion is used when no region is configured and none can be
// detected from the endpoint.
const DefaultRegion = "us-east-1"

var (
	legacyRegionHost  = regexp.MustCompile(`^(?:[a-z0-9.\-]+\.)?s3-([a-z0-9\-]+)\.amazonaws\.com$`)
	virtualRegionHost = regexp.MustCompile(`^(?:[a-z0-9.\-]+\.)?s3\.([a-z0-9\-]+)\.amazonaws\.com$`)
)

// RegionFromEndpoint detects the AWS region encoded in an endpoint.
//
//	s3.amazonaws.com                    -> us-east-1
//	s3-eu-west-1.amazonaws.com          -> eu-west-1
//	bucket.s3.eu-west-1.amazonaws.com   -> eu-west-1
//	custom.endpoint:9000                -> us-east-1
//
// The endpoint may carry a scheme and port; both are ignored.
func RegionFromEndpoint(endpoint string) string {
	host := endpointHost(endpoint)
	if host == DefaultEndpoint {
		return DefaultRegion
	}
	if m := legacyRegionHost.FindStringSubmatch(host); m != nil {
		return m[1]
	}
	if m := virtualRegionHost.FindStringSubmatch(host); m != nil {
		return m[1]
	}
	return DefaultRegion
}

func endpointHost(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.Contains(endpoint, "://") {
		endpoint = "//" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
