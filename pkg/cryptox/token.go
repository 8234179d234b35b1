package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// RedactedLength is the number of hex characters kept from a digest when
// redacting a value for logs.
const RedactedLength = 12

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, encoded as base64url without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Digest returns the lowercase hex SHA-256 of secret. It is deterministic and
// unsalted so the same secret always maps to the same stored value.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Redact returns a short fingerprint of value suitable for logs, or nil when
// value is empty or whitespace. The raw value is never part of the output.
func Redact(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	fp := Digest(value)[:RedactedLength]
	return &fp
}

// RedactString is Redact for callers that want a plain string; empty input
// gives an empty result.
func RedactString(value string) string {
	if r := Redact(value); r != nil {
		return *r
	}
	return ""
}

// Equal compares two secrets in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
