package signer

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is mandated by signature version 2
	"encoding/base64"
)

// v2Signer implements the legacy HMAC-SHA1 scheme.
type v2Signer struct{}

func (s *v2Signer) Version() string { return VersionV2 }

func (s *v2Signer) Sign(req *Request, creds Credentials) (*Request, error) {
	out := req.Clone()
	deleteHeader(out.Header, "Authorization")
	addSecurityToken(out, creds)

	out.Header.Set("Authorization", "AWS "+creds.accessKey+":"+SignatureV2(creds.secretKey, StringToSignV2(out)))
	return out, nil
}

// SignatureV2 returns base64(HMAC-SHA1(secretKey, stringToSign)).
func SignatureV2(secretKey, stringToSign string) string {
	mac := hmac.New(sha1.New, []byte(secretKey))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
