package audit

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize caps how many bytes of an oversized payload are hashed.
// Hashing only the first 1MB keeps memory bounded while still giving
// collision resistance good enough for integrity checks.
const MaxHashSize = 1024 * 1024

// HashContent computes the SHA-256 of content as a hex string. Content past
// MaxHashSize is ignored. Empty content hashes to the empty string.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString hashes a string with HashContent.
func HashString(content string) string {
	return HashContent([]byte(content))
}
