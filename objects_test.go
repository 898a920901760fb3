package minis3_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/minis3"
	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

func TestPut_Headers(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(s3Call) (*transport.Response, error) {
		return respond(http.StatusOK, "", http.Header{"Etag": {`"d41d8cd98f00b204e9800998ecf8427e"`}}), nil
	}}
	c := newClient(t, testConfig(), exec)

	info, err := c.Put(context.Background(), "avatars/42.png", strings.NewReader("not really a png"),
		minis3.WithPublic(),
		minis3.WithMetadata(map[string]string{"Owner": "42"}),
		minis3.WithCacheControl(time.Hour),
	)
	require.NoError(t, err)

	call := exec.last(t)
	assert.Equal(t, "image/png", call.Header.Get("Content-Type"))
	assert.Equal(t, "public-read", call.Header.Get("X-Amz-Acl"))
	assert.Equal(t, "42", call.Header.Get("X-Amz-Meta-Owner"))
	assert.Equal(t, "max-age=3600, public", call.Header.Get("Cache-Control"))

	assert.Equal(t, "avatars/42.png", info.Key)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", info.ETag)
	assert.Equal(t, "image/png", info.ContentType)
	assert.EqualValues(t, 16, info.Size)
	assert.Equal(t, map[string]string{"owner": "42"}, info.Metadata)
}

func TestPut_ContentType(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{}
	c := newClient(t, testConfig(), exec)
	ctx := context.Background()

	_, err := c.Put(ctx, "page", strings.NewReader("<html><body>hi</body></html>"))
	require.NoError(t, err)
	call := exec.last(t)
	assert.Equal(t, "text/html; charset=utf-8", call.Header.Get("Content-Type"))
	assert.Equal(t, "<html><body>hi</body></html>", call.Body, "sniffing must not consume the body")
	assert.Empty(t, call.Header.Get("Cache-Control"))

	_, err = c.Put(ctx, "data.bin", strings.NewReader("x"), minis3.WithContentType("application/x-custom"))
	require.NoError(t, err)
	assert.Equal(t, "application/x-custom", exec.last(t).Header.Get("Content-Type"))

	_, err = c.Put(ctx, "data.bin", strings.NewReader("x"),
		minis3.WithContentType("application/x-custom"),
		minis3.WithHeaders(http.Header{"Content-Type": {"text/csv"}, "X-Amz-Storage-Class": {"REDUCED_REDUNDANCY"}}))
	require.NoError(t, err)
	call = exec.last(t)
	assert.Equal(t, "text/csv", call.Header.Get("Content-Type"))
	assert.Equal(t, "REDUCED_REDUNDANCY", call.Header.Get("X-Amz-Storage-Class"))

	_, err = c.Put(ctx, "empty", nil, minis3.WithCacheControl(minis3.CacheForever))
	require.NoError(t, err)
	call = exec.last(t)
	assert.Empty(t, call.Body)
	assert.Equal(t, "max-age=31536000, private", call.Header.Get("Cache-Control"))
}

func TestPut_Rewind(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{}
	c := newClient(t, testConfig(), exec)
	ctx := context.Background()

	body := strings.NewReader("0123456789")
	_, err := body.Seek(6, io.SeekStart)
	require.NoError(t, err)

	info, err := c.Put(ctx, "a.txt", body)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", exec.last(t).Body)
	assert.EqualValues(t, 10, info.Size)

	_, err = body.Seek(6, io.SeekStart)
	require.NoError(t, err)
	info, err = c.Put(ctx, "a.txt", body, minis3.WithoutRewind())
	require.NoError(t, err)
	assert.Equal(t, "6789", exec.last(t).Body)
	assert.EqualValues(t, 4, info.Size)
}

func TestPut_AllowedTypes(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{}
	c := newClient(t, testConfig(), exec)

	_, err := c.Put(context.Background(), "doc.txt", strings.NewReader("text"), minis3.WithAllowedTypes("image/*"))
	var verr *s3err.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, s3err.CodeNotAllowed, verr.Code)
	assert.Zero(t, exec.count())

	_, err = c.Put(context.Background(), "pic.png", strings.NewReader("png"), minis3.WithAllowedTypes("image/*"))
	require.NoError(t, err)
}

func TestGet(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(s3Call) (*transport.Response, error) {
		return respond(http.StatusOK, "payload", http.Header{
			"Etag":             {`"abc"`},
			"Content-Type":     {"text/plain"},
			"Last-Modified":    {"Mon, 12 Oct 2009 17:50:00 GMT"},
			"X-Amz-Meta-Color": {"blue"},
		}), nil
	}}
	c := newClient(t, testConfig(), exec)

	obj, err := c.Get(context.Background(), "a.txt", minis3.WithHeaders(http.Header{"Range": {"bytes=0-6"}}))
	require.NoError(t, err)
	assert.Equal(t, "bytes=0-6", exec.last(t).Header.Get("Range"))
	assert.Equal(t, "payload", string(obj.Body))
	assert.Equal(t, "abc", obj.ETag)
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.EqualValues(t, 7, obj.Size)
	assert.Equal(t, time.Date(2009, 10, 12, 17, 50, 0, 0, time.UTC), obj.LastModified)
	assert.Equal(t, map[string]string{"color": "blue"}, obj.Metadata)
}

func TestHeadAndExists(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(c s3Call) (*transport.Response, error) {
		switch c.Path {
		case "/missing":
			return nil, notFound(c)
		case "/forbidden":
			return nil, &s3err.TransportError{Method: c.Method, StatusCode: http.StatusForbidden}
		}
		return respond(http.StatusOK, "", http.Header{"Content-Length": {"1024"}, "Content-Type": {"video/mp4"}}), nil
	}}
	c := newClient(t, testConfig(), exec)
	ctx := context.Background()

	info, err := c.Head(ctx, "movie.mp4")
	require.NoError(t, err)
	assert.Equal(t, http.MethodHead, exec.last(t).Method)
	assert.EqualValues(t, 1024, info.Size)
	assert.Equal(t, "video/mp4", info.ContentType)

	ok, err := c.Exists(ctx, "movie.mp4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Exists(ctx, "forbidden")
	assert.True(t, s3err.IsAccessDenied(err))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(s3Call) (*transport.Response, error) {
		return respond(http.StatusNoContent, "", nil), nil
	}}
	c := newClient(t, testConfig(), exec)

	require.NoError(t, c.Delete(context.Background(), "old/file.txt"))
	call := exec.last(t)
	assert.Equal(t, http.MethodDelete, call.Method)
	assert.Equal(t, "/old/file.txt", call.Path)
}

const copyResultBody = `<?xml version="1.0" encoding="UTF-8"?>
<CopyObjectResult><LastModified>2009-10-12T17:50:30.000Z</LastModified><ETag>"9b2cf535f27731c974343645a3985328"</ETag></CopyObjectResult>`

func TestCopy_KeepsMetadata(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(s3Call) (*transport.Response, error) {
		return respond(http.StatusOK, copyResultBody, nil), nil
	}}
	c := newClient(t, testConfig(), exec)

	info, err := c.Copy(context.Background(), "dir/a b.txt", "dir/copy.txt",
		minis3.FromBucket("archive"), minis3.WithMetadata(map[string]string{"ignored": "yes"}))
	require.NoError(t, err)

	call := exec.last(t)
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "/dir/copy.txt", call.Path)
	assert.Equal(t, "/archive/dir/a%20b.txt", call.Header.Get("X-Amz-Copy-Source"))
	assert.Equal(t, "COPY", call.Header.Get("X-Amz-Metadata-Directive"))
	assert.Empty(t, call.Header.Get("X-Amz-Meta-Ignored"))
	assert.Empty(t, call.Header.Get("Content-Type"))
	assert.Empty(t, call.Body)

	assert.Equal(t, "dir/copy.txt", info.Key)
	assert.Equal(t, "9b2cf535f27731c974343645a3985328", info.ETag)
	assert.Equal(t, time.Date(2009, 10, 12, 17, 50, 30, 0, time.UTC), info.LastModified)
}

func TestUpdateMetadata(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(s3Call) (*transport.Response, error) {
		return respond(http.StatusOK, copyResultBody, nil), nil
	}}
	c := newClient(t, testConfig(), exec)

	info, err := c.UpdateMetadata(context.Background(), "report.json", map[string]string{"Reviewed": "true"}, minis3.WithPublic())
	require.NoError(t, err)

	call := exec.last(t)
	assert.Equal(t, "/media/report.json", call.Header.Get("X-Amz-Copy-Source"))
	assert.Equal(t, "REPLACE", call.Header.Get("X-Amz-Metadata-Directive"))
	assert.Equal(t, "true", call.Header.Get("X-Amz-Meta-Reviewed"))
	assert.Equal(t, "application/json", call.Header.Get("Content-Type"))
	assert.Equal(t, "public-read", call.Header.Get("X-Amz-Acl"))
	assert.Equal(t, "application/json", info.ContentType)
	assert.Equal(t, map[string]string{"reviewed": "true"}, info.Metadata)
}

func TestCopy_Errors(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(s3Call) (*transport.Response, error) {
		return respond(http.StatusOK, `<Error><Code>InternalError</Code><Message>We encountered an internal error.</Message></Error>`, nil), nil
	}}
	c := newClient(t, testConfig(), exec)
	ctx := context.Background()

	_, err := c.Copy(ctx, "a", "b")
	require.ErrorIs(t, err, s3err.ErrTransport)
	var terr *s3err.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "InternalError", terr.Code())

	_, err = c.Copy(ctx, "", "b")
	require.ErrorIs(t, err, s3err.ErrValidation)
	_, err = c.Copy(ctx, "a", "b", minis3.WithMetadataDirective(types.MetadataDirective("MERGE")))
	require.ErrorIs(t, err, s3err.ErrValidation)
	assert.Equal(t, 1, exec.count())
}

func TestCopy_MalformedResult(t *testing.T) {
	t.Parallel()

	exec := &fakeS3{handler: func(s3Call) (*transport.Response, error) {
		return respond(http.StatusOK, "<CopyObjectResult><ETag>", nil), nil
	}}
	c := newClient(t, testConfig(), exec)

	_, err := c.Copy(context.Background(), "a", "b")
	require.ErrorIs(t, err, s3err.ErrProtocol)
}
