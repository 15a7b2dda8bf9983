// Package cache stores rendered city lists keyed by the dataset they were
// built from.
//
// Building the city list from a 40k-row dataset is cheap but not free, and
// the output is a pure function of the input bytes. The pipeline hashes the
// input, asks a [Keyer] for an artifact key, and consults a [Cache] before
// parsing. Three backends are provided:
//
//   - [FileCache]: one JSON entry file per key under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for build machines that share results
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLArtifact is the default lifetime of a cached city list.
const TTLArtifact = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A missing or expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts holds everything besides the input bytes that changes the
// rendered output.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for the output rendered from the input
	// whose SHA-256 is inputHash.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the input hash together with opts.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}
