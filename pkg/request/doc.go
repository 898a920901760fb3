// Package request turns S3 operations into signed HTTP requests.
//
// An Operation names what to do (method, bucket, key, query, headers,
// body). Endpoint decides where: virtual-hosted style
// (https://bucket.host/key) or path style (https://host/bucket/key). A
// Caller ties the pieces together: it builds the URL, sets the Host header,
// signs with the configured signer and hands the result to a
// transport.Executor.
//
//	caller := request.NewCaller(endpoint, creds, sig, exec)
//	resp, err := caller.Do(ctx, request.Operation{
//		Method: http.MethodGet,
//		Bucket: "photos",
//		Key:    "2024/cat.jpg",
//	})
//
// Keys and query values are percent-encoded the way AWS expects, so the URL
// sent on the wire is also the canonical form used for signing.
//
// Doer is the seam the listing and multipart packages depend on; tests use
// DoerFunc to fake responses.
package request
