package request

import (
	"net/url"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Endpoint describes where requests are sent.
type Endpoint struct {
	// Host is the service host with an optional port, e.g. "s3.amazonaws.com"
	// or "localhost:9000". A scheme prefix is tolerated and stripped.
	Host string
	// TLS selects https.
	TLS bool
	// PathStyle puts the bucket in the path instead of the host name.
	PathStyle bool
}

// Scheme returns "https" or "http".
func (e Endpoint) Scheme() string {
	if e.TLS {
		return "https"
	}
	return "http"
}

func (e Endpoint) host() string {
	h := e.Host
	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}
	return strings.TrimRight(h, "/")
}

// URL returns the absolute URL for bucket, key and query. An empty bucket
// addresses the service root.
func (e Endpoint) URL(bucket, key string, query url.Values) string {
	host := e.host()
	path := "/"
	switch {
	case bucket == "":
		path += EncodeKey(key)
	case e.PathStyle:
		path += bucket + "/" + EncodeKey(key)
	default:
		host = bucket + "." + host
		path += EncodeKey(key)
	}

	u := e.Scheme() + "://" + host + path
	if q := EncodeQuery(query); q != "" {
		u += "?" + q
	}
	return u
}

// EncodeKey percent-encodes an object key, keeping '/' separators.
func EncodeKey(key string) string {
	return s3utils.EncodePath(strings.TrimPrefix(key, "/"))
}

// EncodeQuery renders query parameters sorted by name with AWS
// percent-encoding ('/' included). Keys with an empty value are rendered
// bare ("uploads"), multiple values keep their order.
func EncodeQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vals := query[k]
		if len(vals) == 0 {
			vals = []string{""}
		}
		for _, v := range vals {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(encodeComponent(k))
			if v != "" {
				b.WriteByte('=')
				b.WriteString(encodeComponent(v))
			}
		}
	}
	return b.String()
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(s3utils.EncodePath(s), "/", "%2F")
}
