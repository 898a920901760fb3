package multipart_test

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

// call is a recorded operation with its body read out.
type call struct {
	op   request.Operation
	body string
}

// fakeDoer answers operations with handler and records them.
type fakeDoer struct {
	handler func(op request.Operation, body string) (*transport.Response, error)
	mu      sync.Mutex
	calls   []call
}

func (d *fakeDoer) Do(_ context.Context, op request.Operation) (*transport.Response, error) {
	var body string
	if op.Body != nil {
		b, err := io.ReadAll(op.Body)
		if err != nil {
			return nil, err
		}
		body = string(b)
	}
	d.mu.Lock()
	d.calls = append(d.calls, call{op: op, body: body})
	d.mu.Unlock()
	return d.handler(op, body)
}

func (d *fakeDoer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func ok(body string, header http.Header) *transport.Response {
	if header == nil {
		header = http.Header{}
	}
	return &transport.Response{StatusCode: http.StatusOK, Header: header, Body: []byte(body)}
}

const initiateBody = `<?xml version="1.0" encoding="UTF-8"?>
<InitiateMultipartUploadResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Bucket>media</Bucket><Key>big.iso</Key><UploadId>VXBsb2FkIElE</UploadId>
</InitiateMultipartUploadResult>`

// s3Doer behaves like a well-formed S3 multipart endpoint.
func s3Doer() *fakeDoer {
	return &fakeDoer{handler: func(op request.Operation, _ string) (*transport.Response, error) {
		switch {
		case op.Method == http.MethodPost && op.Query.Has("uploads"):
			return ok(initiateBody, nil), nil
		case op.Method == http.MethodPut:
			return ok("", http.Header{"Etag": {`"etag-` + op.Query.Get("partNumber") + `"`}}), nil
		case op.Method == http.MethodPost:
			return ok(`<CompleteMultipartUploadResult><Location>https://media.s3.amazonaws.com/big.iso</Location>`+
				`<Bucket>media</Bucket><Key>big.iso</Key><ETag>"3858f62230ac3c915f300c664312c11f-2"</ETag></CompleteMultipartUploadResult>`, nil), nil
		case op.Method == http.MethodDelete:
			return &transport.Response{StatusCode: http.StatusNoContent, Header: http.Header{}}, nil
		default:
			return ok("", nil), nil
		}
	}}
}
