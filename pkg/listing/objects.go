package listing

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// DefaultStorageClass is reported when a listing omits StorageClass.
const DefaultStorageClass = "STANDARD"

// lastModifiedLayout parses object LastModified values.
const lastModifiedLayout = "2006-01-02T15:04:05.999999Z"

// lastModifiedPattern is the exact shape accepted for object timestamps.
var lastModifiedPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,6}Z$`)

// ObjectInfo is one object listing record.
type ObjectInfo struct {
	LastModified time.Time
	Key          string
	// ETag is unquoted.
	ETag         string
	StorageClass string
	Size         int64
	// IsPrefix marks a common prefix produced by WithDelimiter. Only Key is
	// set on such records.
	IsPrefix bool
}

type rawObject struct {
	Key          *string `xml:"Key"`
	Size         *string `xml:"Size"`
	LastModified *string `xml:"LastModified"`
	ETag         *string `xml:"ETag"`
	StorageClass *string `xml:"StorageClass"`
}

type rawPrefix struct {
	Prefix *string `xml:"Prefix"`
}

type objectPage struct {
	IsTruncated    string      `xml:"IsTruncated"`
	NextMarker     string      `xml:"NextMarker"`
	Contents       []rawObject `xml:"Contents"`
	CommonPrefixes []rawPrefix `xml:"CommonPrefixes"`
}

// Objects lists the objects of bucket. The cursor advances to the last
// yielded key. With a delimiter the server's NextMarker takes precedence,
// since common prefixes may sort after the last key.
func Objects(doer request.Doer, bucket string, opts ...Option) *Pager[ObjectInfo] {
	o := newOptions(opts)
	marker := o.marker

	return newPager(func(ctx context.Context) page[ObjectInfo] {
		q := url.Values{}
		if o.prefix != "" {
			q.Set("prefix", o.prefix)
		}
		if marker != "" {
			q.Set("marker", marker)
		}
		if o.delimiter != "" {
			q.Set("delimiter", o.delimiter)
		}
		if o.pageSize > 0 {
			q.Set("max-keys", strconv.Itoa(o.pageSize))
		}
		if o.encodingType != "" {
			q.Set("encoding-type", o.encodingType)
		}

		resp, err := doer.Do(ctx, request.Operation{Method: http.MethodGet, Bucket: bucket, Query: q})
		if err != nil {
			return page[ObjectInfo]{err: err}
		}
		var raw objectPage
		if err := decodePage("object", resp.Body, &raw); err != nil {
			return page[ObjectInfo]{err: err}
		}

		filter := recordFilter{ctx: ctx, log: o.log, kind: "object", policy: o.policy}
		items := make([]ObjectInfo, 0, len(raw.Contents)+len(raw.CommonPrefixes))
		lastRaw := ""
		for i, rec := range raw.Contents {
			filter.index = i
			if rec.Key != nil {
				lastRaw = *rec.Key
			}
			obj, bad := parseObject(rec, o.encodingType)
			if bad != nil {
				if err := filter.reject(bad); err != nil {
					return page[ObjectInfo]{items: items, err: err}
				}
				continue
			}
			items = append(items, obj)
		}
		for _, p := range raw.CommonPrefixes {
			if p.Prefix == nil {
				continue
			}
			key, bad := decodeKey(o.encodingType, "Prefix", *p.Prefix)
			if bad != nil {
				continue
			}
			items = append(items, ObjectInfo{Key: key, IsPrefix: true})
		}
		if len(raw.CommonPrefixes) > 0 {
			sort.SliceStable(items, func(i, j int) bool { return items[i].Key < items[j].Key })
		}

		more := truncated(raw.IsTruncated)
		if !more {
			return page[ObjectInfo]{items: items}
		}

		next := ""
		switch {
		case o.delimiter != "" && raw.NextMarker != "":
			next, _ = decodeKey(o.encodingType, "NextMarker", raw.NextMarker)
		case len(items) > 0:
			next = items[len(items)-1].Key
		case raw.NextMarker != "":
			next, _ = decodeKey(o.encodingType, "NextMarker", raw.NextMarker)
		default:
			next, _ = decodeKey(o.encodingType, "Key", lastRaw)
		}
		if next == "" || next == marker {
			return page[ObjectInfo]{items: items, err: s3err.Protocol("object listing: truncated page does not advance marker %q", marker)}
		}
		marker = next
		return page[ObjectInfo]{items: items, more: true}
	})
}

func parseObject(rec rawObject, encodingType string) (ObjectInfo, *malformed) {
	key, bad := requireString("Key", rec.Key)
	if bad != nil {
		return ObjectInfo{}, bad
	}
	if key, bad = decodeKey(encodingType, "Key", key); bad != nil {
		return ObjectInfo{}, bad
	}
	size, bad := parseInt("Size", rec.Size)
	if bad != nil {
		return ObjectInfo{}, bad
	}
	modified, bad := requireString("LastModified", rec.LastModified)
	if bad != nil {
		return ObjectInfo{}, bad
	}
	modified = strings.TrimSpace(modified)
	if !lastModifiedPattern.MatchString(modified) {
		return ObjectInfo{}, &malformed{field: "LastModified", reason: "unexpected format " + strconv.Quote(modified)}
	}
	ts, err := time.Parse(lastModifiedLayout, modified)
	if err != nil {
		return ObjectInfo{}, &malformed{field: "LastModified", reason: err.Error()}
	}
	etag, bad := requireString("ETag", rec.ETag)
	if bad != nil {
		return ObjectInfo{}, bad
	}

	class := DefaultStorageClass
	if rec.StorageClass != nil && *rec.StorageClass != "" {
		class = *rec.StorageClass
	}

	return ObjectInfo{
		Key:          key,
		Size:         size,
		LastModified: ts,
		ETag:         unquote(etag),
		StorageClass: class,
	}, nil
}

func unquote(etag string) string {
	if len(etag) >= 2 && etag[0] == '"' && etag[len(etag)-1] == '"' {
		return etag[1 : len(etag)-1]
	}
	return etag
}
