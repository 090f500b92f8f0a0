package memory

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash fingerprints memory text for exact deduplication.
// No normalization is applied; callers wanting fuzzy dedup normalize first.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
