// Package hashutil computes the deterministic identifiers the spec fixes
// to a single algorithm, so there is no multi-algorithm dispatch to build
// here (see DESIGN.md for why this stays on crypto/sha1 rather than the
// teacher's pluggable-hash pattern).
package hashutil

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// DocID computes IndexDoc.doc_id = SHA-1(lowercase(normalized_url)), a
// lowercase hex string of length 40.
func DocID(normalizedURL string) string {
	sum := sha1.Sum([]byte(strings.ToLower(normalizedURL)))
	return hex.EncodeToString(sum[:])
}
