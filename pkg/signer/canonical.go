package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Timestamp layouts.
const (
	AmzDateFormat = "20060102T150405Z"
	DateStampLen  = 8
)

// EmptyPayloadHash is the hex SHA-256 digest of an empty payload.
const EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

const (
	v4Algorithm  = "AWS4-HMAC-SHA256"
	v4Service    = "s3"
	v4Terminator = "aws4_request"
)

// bucketVirtualHost matches AWS hosts and captures an optional bucket label.
var bucketVirtualHost = regexp.MustCompile(`(?i)^([a-z0-9\-]+\.)?s3([a-z0-9\-]+)?\.amazonaws\.com$`)

// subResources lists the query parameters that take part in the V2
// canonicalized resource.
var subResources = map[string]struct{}{
	"acl":            {},
	"lifecycle":      {},
	"location":       {},
	"logging":        {},
	"notification":   {},
	"partNumber":     {},
	"policy":         {},
	"requestPayment": {},
	"torrent":        {},
	"uploadId":       {},
	"uploads":        {},
	"versionId":      {},
	"versioning":     {},
	"versions":       {},
	"website":        {},
}

// localHostPrefixes identify development endpoints that are never treated as
// custom virtual-hosted domains.
var localHostPrefixes = []string{"localhost", "127.0.0.1", "minio"}

// dateLayouts are tried in order when deriving a timestamp from a Date header.
var dateLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"Mon, 02 Jan 2006 15:04:05 +0000",
	"Mon, 02 Jan 2006 15:04:05",
}

// StringToSignV2 builds the V2 string to sign:
//
//	METHOD\nContent-MD5\nContent-Type\nDate\nCanonicalizedAmzHeaders+CanonicalizedResource
//
// The Date line is empty when an x-amz-date header is present.
func StringToSignV2(r *Request) string {
	contentMD5, _ := headerValue(r.Header, "Content-MD5")
	contentType, _ := headerValue(r.Header, "Content-Type")
	date, _ := headerValue(r.Header, "Date")
	if _, ok := headerValues(r.Header, "X-Amz-Date"); ok {
		date = ""
	}

	return strings.Join([]string{
		strings.ToUpper(r.Method),
		contentMD5,
		contentType,
		date,
		CanonicalAmzHeaders(r.Header) + CanonicalResource(r.URL),
	}, "\n")
}

// CanonicalAmzHeaders renders every x-amz-* header as "key:value\n", keys
// lowercased and sorted, repeated headers comma-joined.
func CanonicalAmzHeaders(h http.Header) string {
	merged := make(map[string][]string)
	for k, vals := range h {
		lk := strings.ToLower(k)
		if !strings.HasPrefix(lk, "x-amz-") {
			continue
		}
		merged[lk] = append(merged[lk], vals...)
	}
	return renderHeaders(merged)
}

// CanonicalResource builds the V2 canonicalized resource for u.
func CanonicalResource(u *url.URL) string {
	resource := "/"
	host := ""
	rawQuery := ""
	if u != nil {
		if p := u.EscapedPath(); p != "" {
			resource = p
		}
		host = strings.ToLower(u.Hostname())
		rawQuery = u.RawQuery
	}

	if host != "" {
		if m := bucketVirtualHost.FindStringSubmatch(host); m != nil {
			if bucket := strings.TrimSuffix(m[1], "."); bucket != "" {
				resource = "/" + bucket + resource
			}
		} else if !isLocalHost(host) {
			resource = "/" + host + resource
		}
	}

	return resource + subResourceQuery(rawQuery)
}

func isLocalHost(host string) bool {
	for _, p := range localHostPrefixes {
		if strings.HasPrefix(host, p) {
			return true
		}
	}
	digits := strings.NewReplacer(".", "", ":", "").Replace(host)
	if digits == "" {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func subResourceQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	var found []string
	for _, param := range strings.Split(rawQuery, "&") {
		key, value, _ := strings.Cut(param, "=")
		if _, ok := subResources[key]; !ok {
			continue
		}
		if value != "" {
			found = append(found, key+"="+value)
		} else {
			found = append(found, key)
		}
	}
	if len(found) == 0 {
		return ""
	}
	sort.Strings(found)
	return "?" + strings.Join(found, "&")
}

// CanonicalRequestV4 builds the V4 canonical request:
//
//	METHOD\nCanonicalURI\nCanonicalQueryString\nCanonicalHeaders\nSignedHeaders\nPayloadHash
func CanonicalRequestV4(r *Request, payloadHash string) string {
	uri := "/"
	rawQuery := ""
	if r.URL != nil {
		if p := r.URL.EscapedPath(); p != "" {
			uri = p
		}
		rawQuery = r.URL.RawQuery
	}

	return strings.Join([]string{
		strings.ToUpper(r.Method),
		uri,
		CanonicalQueryString(rawQuery),
		CanonicalHeaders(r.Header),
		SignedHeaders(r.Header),
		payloadHash,
	}, "\n")
}

// CanonicalQueryString sorts the raw key=value pairs of a query string by
// key, then value, and joins them with '&'. Components are used exactly as
// they appear in the URL; valueless keys render as "key=".
func CanonicalQueryString(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	type pair struct{ key, value string }
	var pairs []pair
	for _, param := range strings.Split(rawQuery, "&") {
		if param == "" {
			continue
		}
		key, value, _ := strings.Cut(param, "=")
		pairs = append(pairs, pair{key, value})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + p.value
	}
	return strings.Join(parts, "&")
}

// CanonicalHeaders renders every header except Authorization as
// "name:value\n", names lowercased and sorted.
func CanonicalHeaders(h http.Header) string {
	return renderHeaders(signableHeaders(h))
}

// SignedHeaders returns the sorted, ';'-joined lowercased header names that
// CanonicalHeaders covers.
func SignedHeaders(h http.Header) string {
	return strings.Join(sortedKeys(signableHeaders(h)), ";")
}

func signableHeaders(h http.Header) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, vals := range h {
		lk := strings.ToLower(k)
		if lk == "authorization" {
			continue
		}
		out[lk] = append(out[lk], vals...)
	}
	return out
}

func renderHeaders(headers map[string][]string) string {
	var b strings.Builder
	for _, k := range sortedKeys(headers) {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(joinValues(headers[k]))
		b.WriteByte('\n')
	}
	return b.String()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PayloadHash returns the hex SHA-256 of the remaining body bytes. The body
// is seeked back to where it was. A nil body hashes as empty.
func PayloadHash(body io.ReadSeeker) (string, error) {
	if body == nil {
		return EmptyPayloadHash, nil
	}
	start, err := body.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("signer: payload position: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, body); err != nil {
		return "", fmt.Errorf("signer: hash payload: %w", err)
	}
	if _, err := body.Seek(start, io.SeekStart); err != nil {
		return "", fmt.Errorf("signer: rewind payload: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ResolveTimestamp returns the request time in AmzDateFormat: x-amz-date if
// present, else the Date header parsed with the supported layouts, else now.
func ResolveTimestamp(h http.Header, now func() time.Time) string {
	if v, ok := headerValue(h, "X-Amz-Date"); ok {
		return v
	}
	if v, ok := headerValue(h, "Date"); ok {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC().Format(AmzDateFormat)
			}
		}
	}
	return now().UTC().Format(AmzDateFormat)
}

// CredentialScope returns "date/region/s3/aws4_request".
func CredentialScope(dateStamp, region string) string {
	return dateStamp + "/" + region + "/" + v4Service + "/" + v4Terminator
}

// StringToSignV4 builds the V4 string to sign for a canonical request.
func StringToSignV4(timestamp, scope, canonicalRequest string) string {
	sum := sha256.Sum256([]byte(canonicalRequest))
	return v4Algorithm + "\n" + timestamp + "\n" + scope + "\n" + hex.EncodeToString(sum[:])
}

// SigningKey derives the V4 signing key through the date/region/service HMAC
// chain.
func SigningKey(secretKey, dateStamp, region string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, v4Service)
	return hmacSHA256(kService, v4Terminator)
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
