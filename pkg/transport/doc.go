// Package transport sends signed requests over HTTP and normalizes the
// answers.
//
// An Executor takes a *signer.Request and returns a Response holding the
// status code, headers and the fully read body. The default implementation,
// HTTPExecutor, runs on the aws-sdk-go-v2 BuildableClient:
//
//	exec := transport.NewHTTPExecutor(
//		transport.WithTimeout(30*time.Second),
//		transport.WithMetrics(prometheus.DefaultRegisterer),
//	)
//	resp, err := exec.Do(ctx, signedReq)
//
// Bodies are always sent with an explicit Content-Length. Responses with a
// non-2xx status come back as *s3err.TransportError; when the server supplied
// an S3 <Error> document its code and message are exposed through the
// embedded smithy.APIError.
//
// The executor never retries.
package transport
