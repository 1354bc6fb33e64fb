package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// VerifyHMACSignature checks an HMAC-SHA256 hex signature over the raw
// webhook body. Comparison is constant time.
func VerifyHMACSignature(payload []byte, signatureHex, secret string) bool {
	sig := strings.TrimSpace(signatureHex)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// SecureCompare reports whether two tokens match without leaking the
// position of the first mismatch. Used for token-style webhook auth.
func SecureCompare(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// SignHMAC produces the hex HMAC-SHA256 signature the custom gateway
// attaches to its webhook deliveries.
func SignHMAC(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
