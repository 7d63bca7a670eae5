package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Sessions store refresh tokens as SHA-256 digests, so a leaked sessions
// table cannot be replayed against the refresh endpoint.

// TokenDigest returns the hex-encoded SHA-256 digest of a refresh token.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenDigestEqual compares a presented token against a stored digest in
// constant time.
func TokenDigestEqual(token, storedDigest string) bool {
	digest := TokenDigest(token)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedDigest)) == 1
}
