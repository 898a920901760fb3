package s3err

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
)

// Sentinel errors for the four failure classes.
var (
	ErrConfiguration = errors.New("s3: invalid configuration")
	ErrProtocol      = errors.New("s3: protocol error")
	ErrValidation    = errors.New("s3: validation failed")
	ErrTransport     = errors.New("s3: transport error")
)

// Validation error codes.
const (
	CodeRequired     = "required"
	CodeOutOfRange   = "out_of_range"
	CodeInvalidState = "invalid_state"
	CodeInvalidName  = "invalid_name"
	CodeNotAllowed   = "not_allowed"
)

// Configuration wraps a formatted message with ErrConfiguration.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Protocol wraps a formatted message with ErrProtocol.
func Protocol(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}

// ValidationError describes a caller precondition failure.
type ValidationError struct {
	Field   string // Argument or field name (e.g., "parts[2].etag")
	Code    string // Error code (e.g., "required", "out_of_range")
	Message string // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid returns a *ValidationError for field.
func Invalid(field, code, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// TransportError is returned when a request could not be sent or the
// server answered with a non-success status.
type TransportError struct {
	// APIError is decoded from the S3 <Error> body when one was present.
	APIError   smithy.APIError
	Err        error
	Method     string
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.APIError != nil:
		return fmt.Sprintf("%s: %s %s: status %d: %s", ErrTransport.Error(), e.Method, e.URL, e.StatusCode, e.APIError.Error())
	case e.Err != nil:
		return fmt.Sprintf("%s: %s %s: %v", ErrTransport.Error(), e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: %s %s: status %d", ErrTransport.Error(), e.Method, e.URL, e.StatusCode)
	}
}

// Is reports ErrTransport so errors.Is works without exposing the sentinel
// through Unwrap, which is reserved for the underlying cause.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Unwrap returns the underlying cause, if any.
func (e *TransportError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.APIError != nil {
		return e.APIError
	}
	return nil
}

// Code returns the S3 error code, or an empty string.
func (e *TransportError) Code() string {
	if e.APIError == nil {
		return ""
	}
	return e.APIError.ErrorCode()
}

// IsNotFound reports whether err is a transport error for a missing key,
// bucket or upload.
func IsNotFound(err error) bool {
	var terr *TransportError
	if !errors.As(err, &terr) {
		return false
	}
	switch terr.Code() {
	case "NoSuchKey", "NoSuchBucket", "NoSuchUpload", "NotFound":
		return true
	}
	return terr.StatusCode == http.StatusNotFound
}

// IsAccessDenied reports whether err is an authorization failure, including
// signature mismatches.
func IsAccessDenied(err error) bool {
	var terr *TransportError
	if !errors.As(err, &terr) {
		return false
	}
	switch terr.Code() {
	case "AccessDenied", "Forbidden", "SignatureDoesNotMatch", "InvalidAccessKeyId":
		return true
	}
	return terr.StatusCode == http.StatusForbidden
}
