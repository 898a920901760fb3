package minis3

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrymomot/minis3/pkg/mime"
	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

const metaPrefix = "x-amz-meta-"

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// LastModified is zero when the server did not report it.
	LastModified time.Time

	// Metadata holds user metadata with lowercased keys and the
	// x-amz-meta- prefix removed.
	Metadata map[string]string

	Key         string
	ETag        string // Unquoted
	ContentType string
	Size        int64
}

// Object is a downloaded object.
type Object struct {
	Body []byte
	ObjectInfo
}

// Get downloads an object. The body is read completely, up to
// Config.MaxBodySize bytes.
func (c *Client) Get(ctx context.Context, key string, opts ...CallOption) (*Object, error) {
	o := newCallOptions(opts)
	bucket, err := c.target(key, o)
	if err != nil {
		return nil, err
	}

	resp, err := c.caller.Do(ctx, request.Operation{
		Method: http.MethodGet,
		Bucket: bucket,
		Key:    key,
		Header: o.header,
	})
	if err != nil {
		return nil, err
	}

	info := infoFromHeader(key, resp.Header)
	if info.Size == 0 {
		info.Size = int64(len(resp.Body))
	}
	return &Object{ObjectInfo: info, Body: resp.Body}, nil
}

// Head returns object metadata without downloading it.
func (c *Client) Head(ctx context.Context, key string, opts ...CallOption) (*ObjectInfo, error) {
	o := newCallOptions(opts)
	bucket, err := c.target(key, o)
	if err != nil {
		return nil, err
	}

	resp, err := c.caller.Do(ctx, request.Operation{
		Method: http.MethodHead,
		Bucket: bucket,
		Key:    key,
		Header: o.header,
	})
	if err != nil {
		return nil, err
	}

	info := infoFromHeader(key, resp.Header)
	return &info, nil
}

// Exists reports whether an object exists.
func (c *Client) Exists(ctx context.Context, key string, opts ...CallOption) (bool, error) {
	_, err := c.Head(ctx, key, opts...)
	switch {
	case err == nil:
		return true, nil
	case s3err.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Put uploads body as key. The content type is guessed from the key
// extension, then from the first bytes of body, unless WithContentType is
// given. A nil body creates an empty object.
func (c *Client) Put(ctx context.Context, key string, body io.ReadSeeker, opts ...CallOption) (*ObjectInfo, error) {
	o := newCallOptions(opts)
	bucket, err := c.target(key, o)
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = bytes.NewReader(nil)
	}
	if !o.noRewind {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("minis3: put %s: rewind body: %w", key, err)
		}
	}

	size, err := remaining(body)
	if err != nil {
		return nil, fmt.Errorf("minis3: put %s: %w", key, err)
	}

	contentType := o.contentType
	if contentType == "" {
		contentType, err = mime.Guess(key, body)
		if err != nil {
			return nil, fmt.Errorf("minis3: put %s: %w", key, err)
		}
	}
	if len(o.allowedTypes) > 0 && !mime.Matches(contentType, o.allowedTypes...) {
		return nil, s3err.Invalid("contentType", s3err.CodeNotAllowed, "content type %q is not allowed", contentType)
	}

	resp, err := c.caller.Do(ctx, request.Operation{
		Method: http.MethodPut,
		Bucket: bucket,
		Key:    key,
		Header: o.objectHeader(contentType, true),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	return &ObjectInfo{
		Key:         key,
		ETag:        unquote(resp.ETag()),
		ContentType: contentType,
		Size:        size,
		Metadata:    o.lowerMetadata(),
	}, nil
}

// Delete removes an object. Deleting a missing key succeeds on S3.
func (c *Client) Delete(ctx context.Context, key string, opts ...CallOption) error {
	o := newCallOptions(opts)
	bucket, err := c.target(key, o)
	if err != nil {
		return err
	}

	_, err = c.caller.Do(ctx, request.Operation{
		Method: http.MethodDelete,
		Bucket: bucket,
		Key:    key,
		Header: o.header,
	})
	return err
}

type copyResult struct {
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
}

// Copy copies src to dst server-side. The source lives in the same bucket
// unless FromBucket is given.
//
// With the default types.MetadataDirectiveCopy the source metadata is kept.
// With types.MetadataDirectiveReplace the object gets the content type and
// metadata of this call instead; the content type is then guessed from the
// dst extension when not given.
func (c *Client) Copy(ctx context.Context, src, dst string, opts ...CallOption) (*ObjectInfo, error) {
	o := newCallOptions(opts)
	if src == "" {
		return nil, s3err.Invalid("src", s3err.CodeRequired, "copy source key is required")
	}
	bucket, err := c.target(dst, o)
	if err != nil {
		return nil, err
	}
	srcBucket := o.sourceBucket
	if srcBucket == "" {
		srcBucket = bucket
	}

	var header http.Header
	switch o.directive {
	case types.MetadataDirectiveCopy:
		header = o.objectHeader("", false)
	case types.MetadataDirectiveReplace:
		contentType := o.contentType
		if contentType == "" {
			contentType = mime.TypeByExtension(dst)
		}
		if contentType == "" {
			contentType = mime.OctetStream
		}
		header = o.objectHeader(contentType, true)
	default:
		return nil, s3err.Invalid("metadataDirective", s3err.CodeOutOfRange, "unknown metadata directive %q", o.directive)
	}
	header.Set("X-Amz-Copy-Source", "/"+srcBucket+"/"+request.EncodeKey(src))
	header.Set("X-Amz-Metadata-Directive", string(o.directive))

	resp, err := c.caller.Do(ctx, request.Operation{
		Method: http.MethodPut,
		Bucket: bucket,
		Key:    dst,
		Header: header,
	})
	if err != nil {
		return nil, err
	}
	// A copy can fail after the 200 status line was sent.
	if apiErr, ok := transport.ParseError(resp.Body); ok {
		return nil, &s3err.TransportError{
			Method:     http.MethodPut,
			URL:        bucket + "/" + dst,
			StatusCode: resp.StatusCode,
			APIError:   apiErr,
		}
	}

	var res copyResult
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := xml.Unmarshal(resp.Body, &res); err != nil {
			return nil, s3err.Protocol("copy %s to %s: malformed result: %v", src, dst, err)
		}
	}
	info := &ObjectInfo{Key: dst, ETag: unquote(res.ETag)}
	if t, err := time.Parse(time.RFC3339Nano, res.LastModified); err == nil {
		info.LastModified = t.UTC()
	}
	if o.directive == types.MetadataDirectiveReplace {
		info.ContentType = header.Get("Content-Type")
		info.Metadata = o.lowerMetadata()
	}
	return info, nil
}

// UpdateMetadata replaces the metadata of key by copying it onto itself.
func (c *Client) UpdateMetadata(ctx context.Context, key string, md map[string]string, opts ...CallOption) (*ObjectInfo, error) {
	opts = append(opts, WithMetadata(md), WithMetadataDirective(types.MetadataDirectiveReplace))
	return c.Copy(ctx, key, key, opts...)
}

// objectHeader builds the request headers of an upload. Content type,
// cache control and metadata are only sent when withMeta is set. Raw
// headers from WithHeaders win over computed ones.
func (o *callOptions) objectHeader(contentType string, withMeta bool) http.Header {
	h := make(http.Header)
	if o.public {
		h.Set("X-Amz-Acl", string(types.ObjectCannedACLPublicRead))
	}
	if withMeta {
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		if o.maxAge > 0 {
			h.Set("Cache-Control", cacheControl(o.maxAge, o.public))
		}
		for k, v := range o.metadata {
			h.Set(metaPrefix+strings.ToLower(k), v)
		}
	}
	for k, vals := range o.header {
		h[k] = slices.Clone(vals)
	}
	return h
}

func cacheControl(maxAge time.Duration, public bool) string {
	visibility := "private"
	if public {
		visibility = "public"
	}
	return fmt.Sprintf("max-age=%d, %s", int64(maxAge/time.Second), visibility)
}

func (o *callOptions) lowerMetadata() map[string]string {
	if len(o.metadata) == 0 {
		return nil
	}
	md := make(map[string]string, len(o.metadata))
	for k, v := range o.metadata {
		md[strings.ToLower(k)] = v
	}
	return md
}

func infoFromHeader(key string, h http.Header) ObjectInfo {
	info := ObjectInfo{
		Key:         key,
		ETag:        unquote(h.Get("ETag")),
		ContentType: h.Get("Content-Type"),
	}
	if n, err := strconv.ParseInt(h.Get("Content-Length"), 10, 64); err == nil {
		info.Size = n
	}
	if t, err := http.ParseTime(h.Get("Last-Modified")); err == nil {
		info.LastModified = t.UTC()
	}
	for k, vals := range h {
		name := strings.ToLower(k)
		if !strings.HasPrefix(name, metaPrefix) || len(vals) == 0 {
			continue
		}
		if info.Metadata == nil {
			info.Metadata = make(map[string]string)
		}
		info.Metadata[strings.TrimPrefix(name, metaPrefix)] = vals[0]
	}
	return info
}

func unquote(etag string) string {
	if len(etag) >= 2 && etag[0] == '"' && etag[len(etag)-1] == '"' {
		return etag[1 : len(etag)-1]
	}
	return etag
}

// remaining returns the number of bytes between the current offset of r and
// its end, leaving the offset unchanged.
func remaining(r io.Seeker) (int64, error) {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end - cur, nil
}
