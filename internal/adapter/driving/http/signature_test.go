package httphandler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	httphandler "github.com/griffinwalsh/hookbill/internal/adapter/driving/http"
)

// The known-good digest was produced outside this codebase
// (HMAC-SHA256 of the body keyed by the secret, hex-encoded).
func TestVerifySignature_KnownVector(t *testing.T) {
	secret := []byte("hookbill-test-secret")
	body := []byte(`{"zen":"Keep it logically awesome.","hook_id":12}`)
	signature := "sha256=0c85bf71921f7370cf5346b5d2dc88184ffb4f3d2a069bce0d82152b5d67a85e"

	assert.True(t, httphandler.VerifySignature(secret, signature, body))
}

func TestVerifySignature_Rejections(t *testing.T) {
	secret := []byte("hookbill-test-secret")
	body := []byte(`{"zen":"Keep it logically awesome.","hook_id":12}`)
	valid := "sha256=0c85bf71921f7370cf5346b5d2dc88184ffb4f3d2a069bce0d82152b5d67a85e"

	tests := []struct {
		name      string
		secret    []byte
		signature string
		body      []byte
	}{
		{"tampered body", secret, valid, append(body, ' ')},
		{"wrong digest", secret, "sha256=" + "deadbeef", body},
		{"missing prefix", secret, "0c85bf71921f7370cf5346b5d2dc88184ffb4f3d2a069bce0d82152b5d67a85e", body},
		{"wrong scheme", secret, "sha1=0c85bf71921f7370cf5346b5d2dc8818", body},
		{"empty header", secret, "", body},
		{"wrong secret", []byte("other"), valid, body},
		{"empty secret", nil, valid, body},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, httphandler.VerifySignature(tt.secret, tt.signature, tt.body))
		})
	}
}

func TestVerifySignature_DigestIsCaseSensitive(t *testing.T) {
	secret := []byte("hookbill-test-secret")
	body := []byte(`{"zen":"Keep it logically awesome.","hook_id":12}`)
	upper := "sha256=0C85BF71921F7370CF5346B5D2DC88184FFB4F3D2A069BCE0D82152B5D67A85E"

	// The hosting service always sends lowercase hex; anything else fails.
	assert.False(t, httphandler.VerifySignature(secret, upper, body))
}
