package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a "category:digest" cache key from the inputs that
// determine a stage's output, e.g. the root file and version token for a
// snapshot. The parts are JSON-encoded and hashed, so any input change
// produces a different key and stale entries simply stop being read.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the SHA-256 digest of data as a 64-char hex string. The
// pipeline hashes serialized snapshots and layouts with it to derive
// downstream keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
