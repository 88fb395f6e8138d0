package identity

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

// ErrInvalidKey is returned when key material cannot be parsed.
var ErrInvalidKey = errors.New("invalid key")

// ParsePublicKey parses the auth service's RSA or ECDSA public key. The value
// may be inline PEM (as in JWT_PUBLIC_KEY) or a path to a PEM file.
func ParsePublicKey(s string) (crypto.PublicKey, error) {
	block, _ := pem.Decode(readPEM(s))
	if block == nil {
		return nil, ErrInvalidKey
	}
	switch block.Type {
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}
	return nil, ErrInvalidKey
}

// readPEM resolves s to PEM bytes. Anything that does not start with a PEM
// header is treated as a file path; read failures surface as a decode failure
// in the caller.
func readPEM(s string) []byte {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(s)
	}
	b, err := os.ReadFile(s)
	if err != nil {
		return nil
	}
	return b
}
