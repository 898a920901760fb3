package minis3_test

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/minis3"
	"github.com/dmitrymomot/minis3/pkg/listing"
	"github.com/dmitrymomot/minis3/pkg/multipart"
	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

const listObjectsBody = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>media</Name><IsTruncated>false</IsTruncated>
<Contents><Key>photos/a.jpg</Key><LastModified>2024-05-01T10:00:00.000Z</LastModified><ETag>&quot;e1&quot;</ETag><Size>10</Size><StorageClass>STANDARD</StorageClass></Contents>
<Contents><Key>photos/b.jpg</Key><LastModified>2024-05-01T10:00:00.000Z</LastModified><ETag>&quot;e2&quot;</ETag><Size>20</Size><StorageClass>STANDARD</StorageClass></Contents>
</ListBucketResult>`

const listUploadsBody = `<?xml version="1.0" encoding="UTF-8"?>
<ListMultipartUploadsResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Bucket>media</Bucket><IsTruncated>false</IsTruncated>
<Upload><Key>big.iso</Key><UploadId>u-1</UploadId><Initiated>2010-11-10T20:48:33.000Z</Initiated></Upload>
</ListMultipartUploadsResult>`

const initiateBody = `<?xml version="1.0" encoding="UTF-8"?>
<InitiateMultipartUploadResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Bucket>media</Bucket><Key>big.iso</Key><UploadId>u-42</UploadId></InitiateMultipartUploadResult>`

const completeBody = `<CompleteMultipartUploadResult><Location>https://media.s3.amazonaws.com/big.iso</Location>` +
	`<Bucket>media</Bucket><Key>big.iso</Key><ETag>"final-2"</ETag></CompleteMultipartUploadResult>`

// multipartS3 answers like a well-formed multipart endpoint. failPart, when
// set, fails that part number.
func multipartS3(failPart string) *fakeS3 {
	return &fakeS3{handler: func(c s3Call) (*transport.Response, error) {
		switch {
		case c.Method == http.MethodGet && c.Query.Has("uploads"):
			return respond(http.StatusOK, listUploadsBody, nil), nil
		case c.Method == http.MethodGet:
			return respond(http.StatusOK, listObjectsBody, nil), nil
		case c.Method == http.MethodPost && c.Query.Has("uploads"):
			return respond(http.StatusOK, initiateBody, nil), nil
		case c.Method == http.MethodPut:
			n := c.Query.Get("partNumber")
			if n == failPart {
				return nil, &s3err.TransportError{Method: c.Method, StatusCode: http.StatusInternalServerError}
			}
			return respond(http.StatusOK, "", http.Header{"Etag": {`"etag-` + n + `"`}}), nil
		case c.Method == http.MethodPost:
			return respond(http.StatusOK, completeBody, nil), nil
		case c.Method == http.MethodDelete:
			return respond(http.StatusNoContent, "", nil), nil
		}
		return respond(http.StatusOK, "", nil), nil
	}}
}

func (f *fakeS3) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

func TestList(t *testing.T) {
	t.Parallel()

	exec := multipartS3("")
	c := newClient(t, testConfig(), exec)

	objs, err := c.List("photos/", minis3.WithListOptions(listing.WithPageSize(2))).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "photos/a.jpg", objs[0].Key)
	assert.Equal(t, "e1", objs[0].ETag)
	assert.EqualValues(t, 20, objs[1].Size)

	call := exec.last(t)
	assert.Equal(t, "media.s3.amazonaws.com", call.Host)
	assert.Equal(t, "photos/", call.Query.Get("prefix"))
	assert.Equal(t, "2", call.Query.Get("max-keys"))
}

func TestList_NoBucket(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Bucket = ""
	exec := &fakeS3{}
	c := newClient(t, cfg, exec)

	_, err := c.List("").Collect(context.Background())
	require.ErrorIs(t, err, s3err.ErrValidation)
	_, err = c.ListMultipartUploads("").Collect(context.Background())
	require.ErrorIs(t, err, s3err.ErrValidation)
	assert.Zero(t, exec.count())
}

func TestListMultipartUploads(t *testing.T) {
	t.Parallel()

	exec := multipartS3("")
	c := newClient(t, testConfig(), exec)

	ups, err := c.ListMultipartUploads("big", minis3.InBucket("backups")).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, "u-1", ups[0].UploadID)
	assert.Equal(t, "backups.s3.amazonaws.com", exec.last(t).Host)
	assert.Equal(t, "big", exec.last(t).Query.Get("prefix"))
}

func TestInitiateMultipartUpload(t *testing.T) {
	t.Parallel()

	exec := multipartS3("")
	c := newClient(t, testConfig(), exec)
	ctx := context.Background()

	sess, err := c.InitiateMultipartUpload(ctx, "big.iso", minis3.WithMetadata(map[string]string{"source": "dvd"}))
	require.NoError(t, err)
	assert.Equal(t, "u-42", sess.UploadID())
	assert.Equal(t, multipart.StateActive, sess.State())

	call := exec.last(t)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.True(t, call.Query.Has("uploads"))
	assert.Equal(t, "dvd", call.Header.Get("X-Amz-Meta-Source"))
	assert.NotEmpty(t, call.Header.Get("Content-Type"))

	etag, err := sess.UploadPart(ctx, 1, multipart.BytesSource([]byte("part one")))
	require.NoError(t, err)
	res, err := sess.Complete(ctx, []multipart.Part{{PartNumber: 1, ETag: etag}})
	require.NoError(t, err)
	assert.Equal(t, `"final-2"`, res.ETag)
}

func TestResumeAndAbort(t *testing.T) {
	t.Parallel()

	exec := multipartS3("")
	c := newClient(t, testConfig(), exec)

	require.NoError(t, c.AbortMultipartUpload(context.Background(), "big.iso", "u-1"))
	call := exec.last(t)
	assert.Equal(t, http.MethodDelete, call.Method)
	assert.Equal(t, "u-1", call.Query.Get("uploadId"))

	err := c.AbortMultipartUpload(context.Background(), "big.iso", "")
	require.ErrorIs(t, err, s3err.ErrValidation)
	_, err = c.ResumeMultipartUpload("", "u-1")
	require.ErrorIs(t, err, s3err.ErrValidation)
	assert.Equal(t, 1, exec.count())
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploadFile(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("a"), multipart.MinPartSize)
	data = append(data, []byte("tail")...)
	path := writeFile(t, "disk.iso", data)

	exec := multipartS3("")
	c := newClient(t, testConfig(), exec)

	res, err := c.UploadFile(context.Background(), path, "big.iso",
		minis3.WithPartSize(multipart.MinPartSize), minis3.WithWorkers(2))
	require.NoError(t, err)
	assert.Equal(t, "big.iso", res.Key)

	complete := exec.last(t)
	assert.Equal(t, http.MethodPost, complete.Method)
	assert.Equal(t, "u-42", complete.Query.Get("uploadId"))
	assert.Equal(t, `<CompleteMultipartUpload>`+
		`<Part><PartNumber>1</PartNumber><ETag>"etag-1"</ETag></Part>`+
		`<Part><PartNumber>2</PartNumber><ETag>"etag-2"</ETag></Part>`+
		`</CompleteMultipartUpload>`, complete.Body)

	var tail string
	for _, call := range exec.calls {
		if call.Method == http.MethodPut && call.Query.Get("partNumber") == "2" {
			tail = call.Body
		}
	}
	assert.Equal(t, "tail", tail)
}

func TestUploadFile_AbortsOnPartFailure(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("b"), multipart.MinPartSize+1)
	path := writeFile(t, "disk.iso", data)

	exec := multipartS3("2")
	c := newClient(t, testConfig(), exec)

	_, err := c.UploadFile(context.Background(), path, "big.iso", minis3.WithPartSize(multipart.MinPartSize))
	require.ErrorIs(t, err, s3err.ErrTransport)
	assert.Contains(t, err.Error(), "part 2")

	methods := exec.methods()
	assert.Equal(t, http.MethodDelete, methods[len(methods)-1])
	assert.NotContains(t, strings.Join(methods[1:len(methods)-1], ","), http.MethodPost, "no completion after a failed part")
}

func TestUploadFile_Validation(t *testing.T) {
	t.Parallel()

	exec := multipartS3("")
	c := newClient(t, testConfig(), exec)
	ctx := context.Background()

	path := writeFile(t, "small.txt", []byte("0123456789"))

	_, err := c.UploadFile(ctx, path, "small.txt", minis3.WithPartSize(4))
	var verr *s3err.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "partSize", verr.Field)

	_, err = c.UploadFile(ctx, path, "small.txt", minis3.WithAllowedTypes("video/*"))
	require.ErrorIs(t, err, s3err.ErrValidation)

	_, err = c.UploadFile(ctx, filepath.Join(t.TempDir(), "missing"), "x")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, exec.count())

	// A file smaller than one part goes up as a single part.
	_, err = c.UploadFile(ctx, path, "small.txt", minis3.WithPartSize(4<<20))
	require.NoError(t, err)
	assert.Equal(t, []string{http.MethodPost, http.MethodPut, http.MethodPost}, exec.methods())
}
