package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// maxFallbackID bounds locally generated numeric identifiers so they stay
// readable and safe for JSON number precision.
var maxFallbackID = big.NewInt(1_000_000_000_000)

// ToPointer is a helper function to create a pointer to a value.
// x := &5 doesn't compile
// x := ToPointer(5) good.
func ToPointer[T any](p T) *T {
	return &p
}

// NormalizeAccount returns the canonical, lowercase form of an account identifier.
func NormalizeAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}

// SameAccount compares two account identifiers ignoring case.
func SameAccount(a, b string) bool {
	return NormalizeAccount(a) == NormalizeAccount(b)
}

// RandomTxnID returns a random 32 byte value hex encoded with a 0x prefix, shaped
// like a ledger transaction hash.
func RandomTxnID() (string, error) {
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

// RandomID returns a random positive integer lower than 10^12.
func RandomID() (int64, error) {
	n, err := rand.Int(rand.Reader, maxFallbackID)
	if err != nil {
		return 0, err
	}
	return n.Int64() + 1, nil
}
