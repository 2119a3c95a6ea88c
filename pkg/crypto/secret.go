package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"github.com/aistudy/authkit/core"
)

var (
	ErrTooManyArgs = errors.New("too many arguments. expected only 1")
)

const (
	DefaultSecretBytes = 48 // 64 base64url characters
)

// GenerateSecret returns a random signing secret, base64url encoded.
// Lengths that would encode to fewer than core.MinSecretLength characters
// are raised to the default.
func GenerateSecret(byteLength ...int) (string, error) {
	if len(byteLength) > 1 {
		return "", ErrTooManyArgs
	}

	length := DefaultSecretBytes
	if len(byteLength) > 0 && byteLength[0] > 0 {
		length = byteLength[0]
	}
	if base64.RawURLEncoding.EncodedLen(length) < core.MinSecretLength {
		length = DefaultSecretBytes
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Fingerprint identifies a secret in logs without revealing it.
func Fingerprint(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:6])
}
