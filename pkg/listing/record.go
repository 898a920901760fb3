package listing

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// Namespace is the XML namespace of S3 list responses. Elements are matched
// by local name, so responses without it parse as well.
const Namespace = "http://s3.amazonaws.com/doc/2006-03-01/"

// malformed describes why a record was rejected.
type malformed struct {
	field  string
	reason string
}

func (m *malformed) Error() string {
	return m.field + ": " + m.reason
}

func missing(field string) *malformed {
	return &malformed{field: field, reason: "missing"}
}

// decodePage unmarshals a list response body.
func decodePage(kind string, body []byte, v any) error {
	if err := xml.Unmarshal(body, v); err != nil {
		return s3err.Protocol("%s listing: malformed response: %v", kind, err)
	}
	return nil
}

// truncated reports whether IsTruncated holds exactly "true".
func truncated(v string) bool {
	return strings.TrimSpace(v) == "true"
}

func parseInt(field string, v *string) (int64, *malformed) {
	if v == nil {
		return 0, missing(field)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*v), 10, 64)
	if err != nil {
		return 0, &malformed{field: field, reason: fmt.Sprintf("not a number: %q", *v)}
	}
	return n, nil
}

func requireString(field string, v *string) (string, *malformed) {
	if v == nil {
		return "", missing(field)
	}
	return *v, nil
}

// decodeKey reverses encoding-type=url.
func decodeKey(encodingType, field, v string) (string, *malformed) {
	if encodingType != "url" {
		return v, nil
	}
	out, err := url.QueryUnescape(v)
	if err != nil {
		return "", &malformed{field: field, reason: "bad url encoding"}
	}
	return out, nil
}

// recordFilter applies the malformed-record policy across one page.
type recordFilter struct {
	ctx    context.Context
	log    *slog.Logger
	kind   string
	policy Policy
	index  int
}

// reject handles a bad record. It returns a non-nil error when the policy
// says listing must stop.
func (f *recordFilter) reject(m *malformed) error {
	if f.policy == FailOnMalformed {
		return s3err.Protocol("%s listing: record %d: %s", f.kind, f.index, m.Error())
	}
	f.log.DebugContext(f.ctx, "dropping malformed listing record",
		slog.String("kind", f.kind),
		slog.Int("index", f.index),
		slog.String("field", m.field),
		slog.String("reason", m.reason))
	return nil
}
