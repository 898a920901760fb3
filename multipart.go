package minis3

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/minis3/pkg/listing"
	"github.com/dmitrymomot/minis3/pkg/mime"
	"github.com/dmitrymomot/minis3/pkg/multipart"
	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// DefaultPartSize is the UploadFile part size when none is given.
const DefaultPartSize = 8 << 20 // 8MB

// List returns a pager over the objects whose keys start with prefix.
func (c *Client) List(prefix string, opts ...CallOption) *listing.Pager[listing.ObjectInfo] {
	o := newCallOptions(opts)
	bucket, err := c.bucket(o)
	if err != nil {
		return listing.Failed[listing.ObjectInfo](err)
	}
	return listing.Objects(c.caller, bucket, c.listOptions(prefix, o)...)
}

// ListMultipartUploads returns a pager over the unfinished multipart
// uploads whose keys start with prefix.
func (c *Client) ListMultipartUploads(prefix string, opts ...CallOption) *listing.Pager[listing.UploadInfo] {
	o := newCallOptions(opts)
	bucket, err := c.bucket(o)
	if err != nil {
		return listing.Failed[listing.UploadInfo](err)
	}
	return listing.Uploads(c.caller, bucket, c.listOptions(prefix, o)...)
}

func (c *Client) listOptions(prefix string, o *callOptions) []listing.Option {
	opts := []listing.Option{listing.WithPrefix(prefix), listing.WithLogger(c.log)}
	return append(opts, o.listOptions...)
}

// InitiateMultipartUpload starts a multipart upload of key. Content type,
// metadata and WithPublic apply to the assembled object.
func (c *Client) InitiateMultipartUpload(ctx context.Context, key string, opts ...CallOption) (*multipart.Session, error) {
	o := newCallOptions(opts)
	bucket, err := c.target(key, o)
	if err != nil {
		return nil, err
	}
	contentType := o.contentType
	if contentType == "" {
		contentType = mime.TypeByExtension(key)
	}
	if contentType == "" {
		contentType = mime.OctetStream
	}
	return c.initiate(ctx, bucket, key, contentType, o)
}

func (c *Client) initiate(ctx context.Context, bucket, key, contentType string, o *callOptions) (*multipart.Session, error) {
	sess := multipart.New(c.caller, bucket, key,
		multipart.WithHeaders(o.objectHeader(contentType, true)),
		multipart.WithLogger(c.log),
	)
	if err := sess.Initiate(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResumeMultipartUpload returns an active session for an upload started
// earlier, e.g. one found with ListMultipartUploads.
func (c *Client) ResumeMultipartUpload(key, uploadID string, opts ...CallOption) (*multipart.Session, error) {
	o := newCallOptions(opts)
	bucket, err := c.target(key, o)
	if err != nil {
		return nil, err
	}
	return multipart.Resume(c.caller, bucket, key, uploadID, multipart.WithLogger(c.log))
}

// AbortMultipartUpload cancels an upload and frees its stored parts.
func (c *Client) AbortMultipartUpload(ctx context.Context, key, uploadID string, opts ...CallOption) error {
	sess, err := c.ResumeMultipartUpload(key, uploadID, opts...)
	if err != nil {
		return err
	}
	return sess.Abort(ctx)
}

// UploadFile uploads the file at path as key using a multipart upload.
// Parts are sent concurrently (see WithPartSize and WithWorkers). The part
// size grows when the file would need more than multipart.MaxPartNumber
// parts. If any part fails, the upload is aborted and the joined part
// errors are returned.
func (c *Client) UploadFile(ctx context.Context, path, key string, opts ...CallOption) (*multipart.CompleteResult, error) {
	o := newCallOptions(opts)
	bucket, err := c.target(key, o)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("minis3: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("minis3: stat %s: %w", path, err)
	}
	size := fi.Size()

	partSize, err := choosePartSize(size, o.partSize)
	if err != nil {
		return nil, err
	}

	contentType := o.contentType
	if contentType == "" {
		contentType = mime.TypeByExtension(key)
	}
	if contentType == "" {
		if contentType, err = mime.Guess(path, f); err != nil {
			return nil, fmt.Errorf("minis3: upload %s: %w", path, err)
		}
	}
	if len(o.allowedTypes) > 0 && !mime.Matches(contentType, o.allowedTypes...) {
		return nil, s3err.Invalid("contentType", s3err.CodeNotAllowed, "content type %q is not allowed", contentType)
	}

	sess, err := c.initiate(ctx, bucket, key, contentType, o)
	if err != nil {
		return nil, err
	}

	parts, err := multipart.UploadParts(ctx, sess, f, size, partSize, o.workers)
	if err != nil {
		c.abort(ctx, sess)
		return nil, err
	}
	res, err := sess.Complete(ctx, parts)
	if err != nil {
		c.abort(ctx, sess)
		return nil, err
	}

	c.log.InfoContext(ctx, "file uploaded",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int64("size", size),
		slog.Int("parts", len(parts)))
	return res, nil
}

// abort cleans up after a failed upload. It runs even when ctx is done.
func (c *Client) abort(ctx context.Context, sess *multipart.Session) {
	if err := sess.Abort(context.WithoutCancel(ctx)); err != nil {
		c.log.WarnContext(ctx, "abort multipart upload failed",
			slog.String("key", sess.Key),
			slog.String("upload_id", sess.UploadID()),
			slog.Any("error", err))
	}
}

func choosePartSize(size, partSize int64) (int64, error) {
	if partSize == 0 {
		partSize = DefaultPartSize
	}
	if partSize < 0 {
		return 0, s3err.Invalid("partSize", s3err.CodeOutOfRange, "part size %d is negative", partSize)
	}
	if size > partSize && partSize < multipart.MinPartSize {
		return 0, s3err.Invalid("partSize", s3err.CodeOutOfRange,
			"part size %d is below the %d byte minimum", partSize, multipart.MinPartSize)
	}
	if multipart.PartCount(size, partSize) > multipart.MaxPartNumber {
		partSize = (size + multipart.MaxPartNumber - 1) / multipart.MaxPartNumber
	}
	return partSize, nil
}
