// Package signer implements S3 request signing, signature versions 2
// (HMAC-SHA1) and 4 (HMAC-SHA256).
//
// A Signer is selected once by version string and then used to sign any
// number of requests, concurrently if needed:
//
//	s, err := signer.New(signer.VersionV4)
//	if err != nil {
//		// unsupported version: errors.Is(err, s3err.ErrConfiguration)
//	}
//
//	creds := signer.NewCredentials(accessKey, secretKey, "", "s3.eu-west-1.amazonaws.com")
//	req, _ := signer.NewRequest(http.MethodGet, "https://bucket.s3.eu-west-1.amazonaws.com/key", nil)
//	req.Header.Set("Host", req.URL.Host)
//
//	signed, err := s.Sign(req, creds)
//	// signed.Header.Get("Authorization") ==
//	//   "AWS4-HMAC-SHA256 Credential=AKID/20240101/eu-west-1/s3/aws4_request, SignedHeaders=host;x-amz-date, Signature=..."
//
// Signing never changes the method or body and never removes caller headers,
// with one exception: when V4 has to generate x-amz-date it drops a Date
// header.
//
// # Canonical forms
//
// The canonicalization steps are exported as pure functions
// (StringToSignV2, CanonicalResource, CanonicalRequestV4, SigningKey, ...)
// so callers can debug signature mismatches by comparing against the string
// the server reports.
//
// V4 query strings are canonicalized from the raw URL components: pairs are
// sorted but not re-encoded. URLs built by package request are already
// encoded the way AWS expects, so the raw and canonical forms coincide.
//
// # Region
//
// V4 signs with Credentials.SigningRegion: the configured region, or one
// detected from the endpoint host by RegionFromEndpoint.
package signer
