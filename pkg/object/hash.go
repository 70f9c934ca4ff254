package object

import (
	"crypto/sha3"
	"encoding/hex"
	"regexp"
)

// Hash is a 64-character lowercase-hex SHA3-256 digest. It identifies every
// object in the store: blobs, trees, and starlogs alike.
type Hash string

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Valid reports whether h has the shape of a Hash: exactly 64 lowercase hex
// characters. It does not check that an object with this hash exists.
func (h Hash) Valid() bool {
	return hashPattern.MatchString(string(h))
}

// Shard splits the hash into its fan-out directory (first two hex chars)
// and the remaining filename, mirroring the on-disk layout in spec.md §6.
func (h Hash) Shard() (dir, rest string) {
	s := string(h)
	if len(s) < 2 {
		return s, ""
	}
	return s[:2], s[2:]
}

// HashBytes computes the SHA3-256 digest of data, rendered as lowercase hex.
// No salting, no length prefix, no envelope: it is used uniformly for blob
// contents, serialized tree bytes, and serialized starlog bytes.
func HashBytes(data []byte) Hash {
	sum := sha3.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}
