package signer

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is an HTTP request description that can be signed.
// Header lookups performed by the signers are case-insensitive, so headers
// may be added either through Header.Set or directly to the map.
type Request struct {
	URL    *url.URL
	Header http.Header
	// Body is nil when the request has no payload. Signing may read it to
	// compute the payload hash; it is always seeked back afterwards.
	Body   io.ReadSeeker
	Method string
}

// NewRequest parses rawURL and returns a request with an empty header set.
// A nil body means no payload.
func NewRequest(method, rawURL string, body []byte) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("signer: parse url: %w", err)
	}
	r := &Request{
		Method: method,
		URL:    u,
		Header: make(http.Header),
	}
	if body != nil {
		r.Body = bytes.NewReader(body)
	}
	return r, nil
}

// Clone returns a copy with its own URL and header map. The body is shared.
func (r *Request) Clone() *Request {
	out := &Request{
		Method: r.Method,
		Body:   r.Body,
		Header: r.Header.Clone(),
	}
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	if r.URL != nil {
		u := *r.URL
		out.URL = &u
	}
	return out
}

// headerValues returns all values stored under name, matching keys
// case-insensitively.
func headerValues(h http.Header, name string) ([]string, bool) {
	var (
		vals  []string
		found bool
	)
	for k, v := range h {
		if strings.EqualFold(k, name) {
			vals = append(vals, v...)
			found = true
		}
	}
	return vals, found
}

// headerValue returns the trimmed, comma-joined values of name.
func headerValue(h http.Header, name string) (string, bool) {
	vals, ok := headerValues(h, name)
	if !ok {
		return "", false
	}
	return joinValues(vals), true
}

// deleteHeader removes name under any casing.
func deleteHeader(h http.Header, name string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
}

func joinValues(vals []string) string {
	trimmed := make([]string, len(vals))
	for i, v := range vals {
		trimmed[i] = strings.TrimSpace(v)
	}
	return strings.Join(trimmed, ",")
}
