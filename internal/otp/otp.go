// Package otp generates and checks the one-time codes sent by SMS during
// phone verification and password reset.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// codeSpace is 10^6; codes are six decimal digits, zero-padded.
var codeSpace = big.NewInt(1_000_000)

// GenerateCode draws a uniformly random six-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

// Digest returns the hex SHA-256 digest of a code. Challenges store only the
// digest; the plain code lives in the SMS and briefly in memory.
func Digest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// DigestEqual reports whether code matches storedDigest, in constant time.
func DigestEqual(code, storedDigest string) bool {
	return subtle.ConstantTimeCompare([]byte(Digest(code)), []byte(storedDigest)) == 1
}
