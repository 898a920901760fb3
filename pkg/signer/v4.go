package signer

import (
	"encoding/hex"
	"time"
)

// v4Signer implements the HMAC-SHA256 scheme.
type v4Signer struct {
	now           func() time.Time
	contentSHA256 bool
}

func (s *v4Signer) Version() string { return VersionV4 }

func (s *v4Signer) Sign(req *Request, creds Credentials) (*Request, error) {
	out := req.Clone()
	deleteHeader(out.Header, "Authorization")

	if _, ok := headerValues(out.Header, "X-Amz-Date"); !ok {
		out.Header.Set("X-Amz-Date", s.now().UTC().Format(AmzDateFormat))
		deleteHeader(out.Header, "Date")
	}
	addSecurityToken(out, creds)

	payloadHash, err := PayloadHash(out.Body)
	if err != nil {
		return nil, err
	}
	if s.contentSHA256 {
		if _, ok := headerValues(out.Header, "X-Amz-Content-Sha256"); !ok {
			out.Header.Set("X-Amz-Content-Sha256", payloadHash)
		}
	}

	timestamp := ResolveTimestamp(out.Header, s.now)
	dateStamp := timestamp
	if len(timestamp) >= DateStampLen {
		dateStamp = timestamp[:DateStampLen]
	}
	region := creds.SigningRegion()
	scope := CredentialScope(dateStamp, region)

	stringToSign := StringToSignV4(timestamp, scope, CanonicalRequestV4(out, payloadHash))
	signature := hex.EncodeToString(hmacSHA256(SigningKey(creds.secretKey, dateStamp, region), stringToSign))

	out.Header.Set("Authorization",
		v4Algorithm+" Credential="+creds.accessKey+"/"+scope+
			", SignedHeaders="+SignedHeaders(out.Header)+
			", Signature="+signature)
	return out, nil
}
