package transport

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/aws/smithy-go"
)

// Response is a fully read HTTP response.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ETag returns the ETag header exactly as sent by the server (quoted).
func (r *Response) ETag() string {
	return r.Header.Get("ETag")
}

// errorBody mirrors the S3 <Error> document.
type errorBody struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	RequestID string   `xml:"RequestId"`
	Resource  string   `xml:"Resource"`
}

// ParseError decodes an S3 <Error> document. It reports false when body is
// not such a document, which lets callers detect errors that S3 embeds in
// 200 responses (CompleteMultipartUpload does this).
func ParseError(body []byte) (*smithy.GenericAPIError, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}
	var eb errorBody
	if err := xml.Unmarshal(trimmed, &eb); err != nil || eb.Code == "" {
		return nil, false
	}
	return &smithy.GenericAPIError{
		Code:    eb.Code,
		Message: eb.Message,
		Fault:   faultFor(eb.Code),
	}, true
}

// apiErrorFor builds the API error for a failed response, falling back to
// the status text (e.g. "NotFound") for bodiless answers such as HEAD.
func apiErrorFor(status int, body []byte) *smithy.GenericAPIError {
	if apiErr, ok := ParseError(body); ok {
		if apiErr.Fault == smithy.FaultUnknown {
			apiErr.Fault = faultForStatus(status)
		}
		return apiErr
	}
	code := strings.ReplaceAll(http.StatusText(status), " ", "")
	if code == "" {
		code = "UnknownError"
	}
	return &smithy.GenericAPIError{
		Code:    code,
		Message: http.StatusText(status),
		Fault:   faultForStatus(status),
	}
}

func faultFor(code string) smithy.ErrorFault {
	switch code {
	case "InternalError", "ServiceUnavailable", "SlowDown":
		return smithy.FaultServer
	}
	return smithy.FaultUnknown
}

func faultForStatus(status int) smithy.ErrorFault {
	switch {
	case status >= 500:
		return smithy.FaultServer
	case status >= 400:
		return smithy.FaultClient
	}
	return smithy.FaultUnknown
}
