// Package cache provides content hashing of facts documents and an in-memory
// cache of the artifacts compiled from them, so unchanged inputs are not
// replayed twice within a process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent computes a SHA-256 hash of the given content
func HashContent(content []byte) string {
	hasher := sha256.New()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Key derives the cache key for a facts hash compiled under a given artifact
// schema version. A schema bump never serves artifacts of the old layout.
func Key(factsHash, schemaVersion string) string {
	return schemaVersion + ":" + factsHash
}
