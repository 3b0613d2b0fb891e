package extract

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ShortHashLen is the hex length of the compact digest form.
const ShortHashLen = 16

// LongHashLen is the hex length of the collision-resistant digest form.
const LongHashLen = 64

// Digest returns the collision-resistant content digest of b: hex-encoded
// blake2b-256, 64 characters.
func Digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ShortDigest returns the compact digest form: the first 16 hex characters of
// Digest. Selectors may match on either length.
func ShortDigest(b []byte) string {
	return Digest(b)[:ShortHashLen]
}

// HashMatches reports whether a caller-supplied digest (either length,
// case-insensitive) matches the record digest pair.
func HashMatches(supplied, long, short string) bool {
	s := strings.ToLower(supplied)
	switch len(s) {
	case LongHashLen:
		return s == long
	case ShortHashLen:
		return s == short
	default:
		return false
	}
}
