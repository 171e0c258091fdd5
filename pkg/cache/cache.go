// Package cache provides pluggable caching for parsed ledgers and
// rendered artifacts.
//
// Keys are derived from content hashes, so re-rendering the same ledger
// with the same options is a pure cache hit regardless of file name.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// TTLs for the two cached stages. Parsed trees are cheap to rebuild, so
// they expire quickly; rendered artifacts are the expensive product.
const (
	TTLTree     = 10 * time.Minute
	TTLArtifact = 24 * time.Hour
)

// Cache is the storage interface shared by the file, Redis, and null
// backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// TreeKey identifies a genealogy built from a ledger: the ledger
	// content hash plus the sheet it was read from.
	TreeKey(ledgerHash, sheet string) string

	// ArtifactKey identifies a rendered artifact: the tree key hash plus
	// the render options that shape the output.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Font    string `json:"font"`
	RankDir string `json:"rankdir"`
}

// DefaultKeyer generates globally-scoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TreeKey generates a key for a parsed genealogy.
func (k *DefaultKeyer) TreeKey(ledgerHash, sheet string) string {
	return hashKey("tree", ledgerHash, sheet)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
