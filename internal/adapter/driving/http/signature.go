package httphandler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// VerifySignature reports whether signatureHeader carries a valid
// HMAC-SHA256 digest of body keyed by secret. The digest is computed over
// the exact raw bytes read from the wire; callers must never re-serialize
// the decoded payload, since that can reorder keys or change whitespace and
// break the hash. Comparison is constant-time.
func VerifySignature(secret []byte, signatureHeader string, body []byte) bool {
	if len(secret) == 0 {
		return false
	}
	if !strings.HasPrefix(signatureHeader, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	received := strings.TrimPrefix(signatureHeader, signaturePrefix)
	return hmac.Equal([]byte(received), []byte(expected))
}
