package multipart

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/minis3/pkg/listing"
	"github.com/dmitrymomot/minis3/pkg/logger"
	"github.com/dmitrymomot/minis3/pkg/request"
	"github.com/dmitrymomot/minis3/pkg/s3err"
	"github.com/dmitrymomot/minis3/pkg/transport"
)

// Part number bounds accepted by S3.
const (
	MinPartNumber = 1
	MaxPartNumber = 10000
)

// Part identifies an uploaded part in a completion request.
type Part struct {
	ETag       string
	PartNumber int
	Size       int64
}

// Option configures a Session.
type Option func(*Session)

// WithHeaders adds headers to the initiate request, such as Content-Type,
// x-amz-acl or x-amz-meta-* entries for the final object.
func WithHeaders(h http.Header) Option {
	return func(s *Session) {
		for k, vals := range h {
			for _, v := range vals {
				s.header.Add(k, v)
			}
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session is one multipart upload.
type Session struct {
	doer     request.Doer
	header   http.Header
	log      *slog.Logger
	Bucket   string
	Key      string
	uploadID string
	mu       sync.Mutex
	state    State
}

// New returns a session in the Created state.
func New(doer request.Doer, bucket, key string, opts ...Option) *Session {
	s := &Session{
		doer:   doer,
		Bucket: bucket,
		Key:    key,
		header: make(http.Header),
		log:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resume returns an Active session for an upload started elsewhere, for
// example one found with listing.Uploads.
func Resume(doer request.Doer, bucket, key, uploadID string, opts ...Option) (*Session, error) {
	if strings.TrimSpace(uploadID) == "" {
		return nil, s3err.Invalid("uploadID", s3err.CodeRequired, "upload id is required")
	}
	s := New(doer, bucket, key, opts...)
	s.uploadID = uploadID
	s.state = StateActive
	return s, nil
}

// UploadID returns the id assigned by Initiate, or "" before that.
func (s *Session) UploadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// activeID returns the upload id if the session is Active.
func (s *Session) activeID(op string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return "", s3err.Invalid("state", s3err.CodeInvalidState, "%s requires an active upload, session is %s", op, s.state)
	}
	return s.uploadID, nil
}

// Initiate starts the upload and stores the server-assigned upload id.
func (s *Session) Initiate(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCreated {
		st := s.state
		s.mu.Unlock()
		return s3err.Invalid("state", s3err.CodeInvalidState, "initiate requires a new session, session is %s", st)
	}
	s.mu.Unlock()

	resp, err := s.doer.Do(ctx, request.Operation{
		Method: http.MethodPost,
		Bucket: s.Bucket,
		Key:    s.Key,
		Query:  url.Values{"uploads": nil},
		Header: s.header.Clone(),
	})
	if err != nil {
		return err
	}

	var res initiateResult
	if err := xml.Unmarshal(resp.Body, &res); err != nil {
		return s3err.Protocol("initiate multipart upload: malformed response: %v", err)
	}
	if res.UploadID == nil || strings.TrimSpace(*res.UploadID) == "" {
		return s3err.Protocol("initiate multipart upload: response has no UploadId")
	}

	id := strings.TrimSpace(*res.UploadID)
	s.mu.Lock()
	if s.state != StateCreated {
		st := s.state
		s.mu.Unlock()
		return s3err.Invalid("state", s3err.CodeInvalidState, "upload %s initiated concurrently, session is %s", id, st)
	}
	s.uploadID = id
	s.state = StateActive
	s.mu.Unlock()

	s.log.DebugContext(ctx, "multipart upload initiated",
		slog.String("bucket", s.Bucket),
		slog.String("key", s.Key),
		slog.String("upload_id", id))
	return nil
}

// PartOption configures one UploadPart call.
type PartOption func(*partOptions)

type partOptions struct {
	header http.Header
	rewind bool
	close  bool
}

// WithRewind seeks the source to its start before sending.
func WithRewind() PartOption {
	return func(o *partOptions) { o.rewind = true }
}

// WithClose closes the source once the request is done, whether it
// succeeded or not. The source must not be used afterwards.
func WithClose() PartOption {
	return func(o *partOptions) { o.close = true }
}

// WithPartHeaders adds headers to the part request (e.g. Content-MD5).
func WithPartHeaders(h http.Header) PartOption {
	return func(o *partOptions) {
		for k, vals := range h {
			for _, v := range vals {
				o.header.Add(k, v)
			}
		}
	}
}

// UploadPart sends src as part partNumber and returns the ETag header as
// received, quotes included. The part is not recorded in the session.
func (s *Session) UploadPart(ctx context.Context, partNumber int, src PartSource, opts ...PartOption) (etag string, err error) {
	o := partOptions{header: make(http.Header)}
	for _, opt := range opts {
		opt(&o)
	}
	if src != nil && o.close {
		defer func() {
			if cerr := src.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("multipart: close part %d source: %w", partNumber, cerr)
			}
		}()
	}

	if partNumber < MinPartNumber || partNumber > MaxPartNumber {
		return "", s3err.Invalid("partNumber", s3err.CodeOutOfRange, "part number %d outside %d..%d", partNumber, MinPartNumber, MaxPartNumber)
	}
	if src == nil {
		return "", s3err.Invalid("source", s3err.CodeRequired, "part %d has no source", partNumber)
	}
	uploadID, err := s.activeID("upload part")
	if err != nil {
		return "", err
	}
	if o.rewind {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("multipart: rewind part %d: %w", partNumber, err)
		}
	}

	resp, err := s.doer.Do(ctx, request.Operation{
		Method: http.MethodPut,
		Bucket: s.Bucket,
		Key:    s.Key,
		Query: url.Values{
			"partNumber": {strconv.Itoa(partNumber)},
			"uploadId":   {uploadID},
		},
		Header: o.header,
		Body:   src,
	})
	if err != nil {
		return "", err
	}

	etag = resp.ETag()
	s.log.DebugContext(ctx, "part uploaded",
		slog.String("upload_id", uploadID),
		slog.Int("part", partNumber),
		slog.Int64("size", src.Size()),
		slog.String("etag", etag))
	return etag, nil
}

// Complete assembles the object from parts, in the order given. The list is
// validated before any request is made. A failed completion leaves the
// session Active so it can be retried or aborted.
func (s *Session) Complete(ctx context.Context, parts []Part) (*CompleteResult, error) {
	if err := ValidateParts(parts); err != nil {
		return nil, err
	}
	uploadID, err := s.activeID("complete")
	if err != nil {
		return nil, err
	}

	resp, err := s.doer.Do(ctx, request.Operation{
		Method: http.MethodPost,
		Bucket: s.Bucket,
		Key:    s.Key,
		Query:  url.Values{"uploadId": {uploadID}},
		Header: http.Header{"Content-Type": {"application/xml"}},
		Body:   bytes.NewReader(completionBody(parts)),
	})
	if err != nil {
		return nil, err
	}
	// S3 may report a failed completion inside a 200 response.
	if apiErr, ok := transport.ParseError(resp.Body); ok {
		return nil, &s3err.TransportError{
			Method:     http.MethodPost,
			URL:        s.Bucket + "/" + s.Key,
			StatusCode: resp.StatusCode,
			APIError:   apiErr,
		}
	}

	var res CompleteResult
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		// Lenient: a body we cannot read still means the upload completed.
		if err := xml.Unmarshal(resp.Body, &res); err != nil {
			s.log.DebugContext(ctx, "unreadable completion response", slog.Any("error", err))
		}
	}

	s.mu.Lock()
	s.state = StateCompleted
	s.mu.Unlock()
	return &res, nil
}

// ValidateParts checks a completion list: it must be non-empty and every
// entry needs a positive part number and an ETag.
func ValidateParts(parts []Part) error {
	if len(parts) == 0 {
		return s3err.Invalid("parts", s3err.CodeRequired, "at least one part is required")
	}
	for i, p := range parts {
		if p.PartNumber <= 0 {
			return s3err.Invalid(fmt.Sprintf("parts[%d].partNumber", i), s3err.CodeRequired, "part %d has no part number", i)
		}
		if p.PartNumber > MaxPartNumber {
			return s3err.Invalid(fmt.Sprintf("parts[%d].partNumber", i), s3err.CodeOutOfRange, "part number %d exceeds %d", p.PartNumber, MaxPartNumber)
		}
		if strings.TrimSpace(p.ETag) == "" {
			return s3err.Invalid(fmt.Sprintf("parts[%d].etag", i), s3err.CodeRequired, "part %d has no etag", p.PartNumber)
		}
	}
	return nil
}

// Abort cancels the upload. It may be called again after Abort or Complete;
// the server's answer is returned as is.
func (s *Session) Abort(ctx context.Context) error {
	uploadID := s.UploadID()
	if uploadID == "" {
		return s3err.Invalid("state", s3err.CodeInvalidState, "abort requires an initiated upload")
	}

	_, err := s.doer.Do(ctx, request.Operation{
		Method: http.MethodDelete,
		Bucket: s.Bucket,
		Key:    s.Key,
		Query:  url.Values{"uploadId": {uploadID}},
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateAborted
	s.mu.Unlock()
	return nil
}

// ListParts lists the parts the server holds for this upload. Before
// Initiate the pager yields a validation error.
func (s *Session) ListParts(opts ...listing.Option) *listing.Pager[listing.PartInfo] {
	uploadID := s.UploadID()
	if uploadID == "" {
		return listing.Failed[listing.PartInfo](s3err.Invalid("state", s3err.CodeInvalidState, "list parts requires an initiated upload"))
	}
	return listing.Parts(s.doer, s.Bucket, s.Key, uploadID, opts...)
}
