package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// Hash computes a SHA-256 hex digest over the given parts. Parts are
// separated by a NUL byte so ("ab", "c") and ("a", "bc") differ.
func Hash(parts ...[]byte) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Truncate shortens a string to at most maxLen runes, appending "..." if
// truncated. It never splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
