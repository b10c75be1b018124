package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHashLength is the length of a hex encoded content hash
const ContentHashLength = 64

// ContentHash returns the lowercase hex encoded sha256 digest of b.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// VerifyContentHash reports whether hash is the content hash of b.
func VerifyContentHash(b []byte, hash string) bool {
	return ContentHash(b) == NormalizeContentHash(hash)
}

// NormalizeContentHash returns the canonical spelling of a hex digest: lowercase without the 0x
// prefix. Values that are not a digest are returned trimmed.
func NormalizeContentHash(hash string) string {
	hash = strings.TrimSpace(hash)
	if !IsContentHash(hash) {
		return hash
	}
	return strings.ToLower(strings.TrimPrefix(hash, "0x"))
}

// IsContentHash reports whether s looks like a hex encoded sha256 digest.
func IsContentHash(s string) bool {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != ContentHashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
