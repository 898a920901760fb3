// Package minis3 is a small client for S3-compatible object storage.
//
// It signs requests itself (legacy V2 or V4), talks to the server over a
// plain HTTP executor and exposes the handful of operations most
// applications need: single-shot object and bucket calls, paginated
// listings and multipart uploads.
//
// # Quick Start
//
//	client, err := minis3.New(minis3.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minio",
//	    SecretKey: "minio123",
//	    Bucket:    "media",
//	    PathStyle: true,
//	    DisableTLS: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	info, err := client.Put(ctx, "avatars/42.png", file, minis3.WithPublic())
//
// # Listings
//
// List returns a pager that follows the server's continuation markers:
//
//	pager := client.List("avatars/")
//	for obj, err := range pager.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(obj.Key, obj.Size)
//	}
//
// # Multipart Uploads
//
// UploadFile splits a file into parts, uploads them concurrently and
// completes the upload. For full control, use InitiateMultipartUpload and
// drive the returned session directly.
//
// # Errors
//
// All errors wrap one of the sentinels in package s3err: ErrConfiguration,
// ErrValidation, ErrProtocol or ErrTransport. Use s3err.IsNotFound and
// s3err.IsAccessDenied to inspect server answers.
package minis3
