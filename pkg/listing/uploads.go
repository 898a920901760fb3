package listing

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// UploadInfo describes an in-progress multipart upload.
type UploadInfo struct {
	// Initiated is zero when the server omits or garbles it; it is not
	// required.
	Initiated time.Time
	Key       string
	UploadID  string
}

type rawUpload struct {
	Key       *string `xml:"Key"`
	UploadID  *string `xml:"UploadId"`
	Initiated string  `xml:"Initiated"`
}

type uploadPage struct {
	IsTruncated        string      `xml:"IsTruncated"`
	NextKeyMarker      *string     `xml:"NextKeyMarker"`
	NextUploadIDMarker *string     `xml:"NextUploadIdMarker"`
	Uploads            []rawUpload `xml:"Upload"`
}

// Uploads lists the in-progress multipart uploads of bucket. The cursor is
// the (key-marker, upload-id-marker) pair, advanced from the server's
// NextKeyMarker and NextUploadIdMarker.
func Uploads(doer request.Doer, bucket string, opts ...Option) *Pager[UploadInfo] {
	o := newOptions(opts)
	keyMarker, uploadIDMarker := o.keyMarker, o.uploadIDMarker
	pageSize := o.pageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	return newPager(func(ctx context.Context) page[UploadInfo] {
		q := url.Values{
			"uploads":     nil,
			"max-uploads": {strconv.Itoa(pageSize)},
		}
		if o.prefix != "" {
			q.Set("prefix", o.prefix)
		}
		if keyMarker != "" {
			q.Set("key-marker", keyMarker)
		}
		if uploadIDMarker != "" {
			q.Set("upload-id-marker", uploadIDMarker)
		}
		if o.encodingType != "" {
			q.Set("encoding-type", o.encodingType)
		}

		resp, err := doer.Do(ctx, request.Operation{Method: http.MethodGet, Bucket: bucket, Query: q})
		if err != nil {
			return page[UploadInfo]{err: err}
		}
		var raw uploadPage
		if err := decodePage("upload", resp.Body, &raw); err != nil {
			return page[UploadInfo]{err: err}
		}

		filter := recordFilter{ctx: ctx, log: o.log, kind: "upload", policy: o.policy}
		items := make([]UploadInfo, 0, len(raw.Uploads))
		for i, rec := range raw.Uploads {
			filter.index = i
			up, bad := parseUpload(rec, o.encodingType)
			if bad != nil {
				if err := filter.reject(bad); err != nil {
					return page[UploadInfo]{items: items, err: err}
				}
				continue
			}
			items = append(items, up)
		}

		if !truncated(raw.IsTruncated) {
			return page[UploadInfo]{items: items}
		}

		nextKey, nextID := keyMarker, uploadIDMarker
		if raw.NextKeyMarker != nil {
			nextKey, _ = decodeKey(o.encodingType, "NextKeyMarker", *raw.NextKeyMarker)
		}
		if raw.NextUploadIDMarker != nil {
			nextID = *raw.NextUploadIDMarker
		}
		if nextKey == keyMarker && nextID == uploadIDMarker {
			return page[UploadInfo]{items: items, err: s3err.Protocol(
				"upload listing: truncated page does not advance markers (%q, %q)", keyMarker, uploadIDMarker)}
		}
		keyMarker, uploadIDMarker = nextKey, nextID
		return page[UploadInfo]{items: items, more: true}
	})
}

func parseUpload(rec rawUpload, encodingType string) (UploadInfo, *malformed) {
	key, bad := requireString("Key", rec.Key)
	if bad != nil {
		return UploadInfo{}, bad
	}
	if key, bad = decodeKey(encodingType, "Key", key); bad != nil {
		return UploadInfo{}, bad
	}
	id, bad := requireString("UploadId", rec.UploadID)
	if bad != nil {
		return UploadInfo{}, bad
	}
	up := UploadInfo{Key: key, UploadID: id}
	if t, err := time.Parse(time.RFC3339Nano, rec.Initiated); err == nil {
		up.Initiated = t
	}
	return up, nil
}
