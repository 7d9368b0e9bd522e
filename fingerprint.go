package rmd2ptx

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint identifies a code block by content rather than position.
// Whitespace runs are collapsed before hashing, so re-indented or reflowed
// code keeps its fingerprint while any token change produces a new one.
func Fingerprint(code string) string {
	normalized := strings.Join(strings.Fields(code), " ")
	sum := blake3.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
