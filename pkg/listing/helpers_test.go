package listing_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

// pageDoer serves canned bodies in order and records every operation.
type pageDoer struct {
	t      *testing.T
	bodies []string
	errAt  map[int]error
	mu     sync.Mutex
	ops    []request.Operation
}

func newPageDoer(t *testing.T, bodies ...string) *pageDoer {
	return &pageDoer{t: t, bodies: bodies, errAt: map[int]error{}}
}

func (d *pageDoer) Do(_ context.Context, op request.Operation) (*transport.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := len(d.ops)
	d.ops = append(d.ops, op)
	if err, ok := d.errAt[i]; ok {
		return nil, err
	}
	require.Less(d.t, i, len(d.bodies), "unexpected page request %d", i)
	return &transport.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(d.bodies[i])}, nil
}

func (d *pageDoer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ops)
}

func (d *pageDoer) query(i int, name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	vals, ok := d.ops[i].Query[name]
	if !ok {
		return "", false
	}
	if len(vals) == 0 {
		return "", true
	}
	return vals[0], true
}

const objectsHead = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>b</Name>`

func object(key, size string) string {
	return `<Contents><Key>` + key + `</Key><LastModified>2024-05-01T10:00:00.000Z</LastModified>` +
		`<ETag>&quot;etag-` + key + `&quot;</ETag><Size>` + size + `</Size><StorageClass>STANDARD</StorageClass></Contents>`
}

func objectsPage(truncated bool, contents ...string) string {
	body := objectsHead
	if truncated {
		body += `<IsTruncated>true</IsTruncated>`
	} else {
		body += `<IsTruncated>false</IsTruncated>`
	}
	for _, c := range contents {
		body += c
	}
	return body + `</ListBucketResult>`
}
