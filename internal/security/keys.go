package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

// ErrInvalidKey is returned when the configured signing key cannot be parsed.
var ErrInvalidKey = errors.New("invalid signing key")

// The portal signs tokens with one RSA key pair. JWT_PRIVATE_KEY and
// JWT_PUBLIC_KEY each accept inline PEM or a path to a PEM file.

func keyMaterial(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(s), nil
	}
	return os.ReadFile(s)
}

// ParsePrivateKey loads the RSA signing key from inline PEM or a file path.
// PKCS#1 and PKCS#8 encodings are accepted.
func ParsePrivateKey(s string) (*rsa.PrivateKey, error) {
	raw, err := keyMaterial(s)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, ErrInvalidKey
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrInvalidKey
		}
		return rsaKey, nil
	}
	return nil, ErrInvalidKey
}

// ParsePublicKey loads the RSA verification key from inline PEM or a file
// path. PKCS#1 and PKIX encodings are accepted.
func ParsePublicKey(s string) (*rsa.PublicKey, error) {
	raw, err := keyMaterial(s)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, ErrInvalidKey
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, ErrInvalidKey
		}
		return rsaKey, nil
	}
	return nil, ErrInvalidKey
}
