// Package cache stores generated secret keys so a width's key is derived
// once and then reused by both scrambling and unscrambling runs.
//
// Three backends implement [Cache]:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entries under a local directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several hosts using the
//     same keys
//
// Cache keys come from a [Keyer], which hashes the width together with the
// generator version so that a change to the generation algorithm never
// serves a stale key.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	k := cache.NewDefaultKeyer().SecretKeyKey(512, key.GeneratorVersion)
//	data, hit, err := c.Get(ctx, k)
package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLSecretKey is how long a generated key stays cached. Keys are a pure
// function of the width, so the TTL only bounds cache growth.
const TTLSecretKey = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true on a hit, or nil and false on a
	// miss. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SecretKeyKey returns the cache key for the secret key of width
	// produced by generator version.
	SecretKeyKey(width, version int) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SecretKeyKey returns "secretkey:<sha256>" over the width and version.
func (k *DefaultKeyer) SecretKeyKey(width, version int) string {
	return hashKey("secretkey", fmt.Sprintf("v%d", version), width)
}
