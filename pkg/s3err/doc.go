// Package s3err defines the error taxonomy shared by the minis3 packages.
//
// Every failure returned by the library wraps exactly one of four sentinel
// errors, so callers can branch with errors.Is:
//
//   - ErrConfiguration: the client or signer was constructed with an
//     unsupported setting (for example an unknown signature version).
//   - ErrProtocol: the server answered with a body the library cannot use,
//     such as an InitiateMultipartUpload response without an UploadId.
//   - ErrValidation: caller-supplied arguments violate a precondition. These
//     are always detected before any network call is made.
//   - ErrTransport: the executor failed or the server returned a non-success
//     status. The library never retries.
//
// Richer detail is available through errors.As:
//
//	var terr *s3err.TransportError
//	if errors.As(err, &terr) {
//		log.Printf("status=%d code=%s", terr.StatusCode, terr.Code())
//	}
//
//	var verr *s3err.ValidationError
//	if errors.As(err, &verr) {
//		log.Printf("invalid %s: %s", verr.Field, verr.Message)
//	}
//
// IsNotFound and IsAccessDenied classify transport errors by S3 error code
// or HTTP status.
package s3err
