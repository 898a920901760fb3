package listing

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// PartInfo is one uploaded part.
type PartInfo struct {
	// LastModified is the server's string, not interpreted.
	LastModified string
	// ETag is kept exactly as received, quotes included, so it can be fed
	// back into a completion request.
	ETag       string
	PartNumber int
	Size       int64
}

type rawPart struct {
	PartNumber   *string `xml:"PartNumber"`
	LastModified *string `xml:"LastModified"`
	ETag         *string `xml:"ETag"`
	Size         *string `xml:"Size"`
}

type partPage struct {
	IsTruncated          string    `xml:"IsTruncated"`
	NextPartNumberMarker string    `xml:"NextPartNumberMarker"`
	Parts                []rawPart `xml:"Part"`
}

// Parts lists the parts uploaded so far for uploadID. The cursor is the
// part-number marker, advanced from NextPartNumberMarker.
func Parts(doer request.Doer, bucket, key, uploadID string, opts ...Option) *Pager[PartInfo] {
	o := newOptions(opts)
	marker := o.partNumberMarker
	pageSize := o.pageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	return newPager(func(ctx context.Context) page[PartInfo] {
		q := url.Values{
			"uploadId":  {uploadID},
			"max-parts": {strconv.Itoa(pageSize)},
		}
		if marker > 0 {
			q.Set("part-number-marker", strconv.Itoa(marker))
		}
		if o.encodingType != "" {
			q.Set("encoding-type", o.encodingType)
		}

		resp, err := doer.Do(ctx, request.Operation{Method: http.MethodGet, Bucket: bucket, Key: key, Query: q})
		if err != nil {
			return page[PartInfo]{err: err}
		}
		var raw partPage
		if err := decodePage("part", resp.Body, &raw); err != nil {
			return page[PartInfo]{err: err}
		}

		filter := recordFilter{ctx: ctx, log: o.log, kind: "part", policy: o.policy}
		items := make([]PartInfo, 0, len(raw.Parts))
		for i, rec := range raw.Parts {
			filter.index = i
			p, bad := parsePart(rec)
			if bad != nil {
				if err := filter.reject(bad); err != nil {
					return page[PartInfo]{items: items, err: err}
				}
				continue
			}
			items = append(items, p)
		}

		if !truncated(raw.IsTruncated) {
			return page[PartInfo]{items: items}
		}

		next, err := strconv.Atoi(strings.TrimSpace(raw.NextPartNumberMarker))
		if err != nil || next <= marker {
			return page[PartInfo]{items: items, err: s3err.Protocol(
				"part listing: truncated page does not advance marker %d (next %q)", marker, raw.NextPartNumberMarker)}
		}
		marker = next
		return page[PartInfo]{items: items, more: true}
	})
}

func parsePart(rec rawPart) (PartInfo, *malformed) {
	n, bad := parseInt("PartNumber", rec.PartNumber)
	if bad != nil {
		return PartInfo{}, bad
	}
	modified, bad := requireString("LastModified", rec.LastModified)
	if bad != nil {
		return PartInfo{}, bad
	}
	etag, bad := requireString("ETag", rec.ETag)
	if bad != nil {
		return PartInfo{}, bad
	}
	size, bad := parseInt("Size", rec.Size)
	if bad != nil {
		return PartInfo{}, bad
	}
	return PartInfo{
		PartNumber:   int(n),
		LastModified: modified,
		ETag:         etag,
		Size:         size,
	}, nil
}
