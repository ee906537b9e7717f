// Package cache provides the session key-value store with sliding-expiration
// TTL semantics. Values are opaque strings (callers store JSON).
package cache

import (
	"context"
	"time"
)

// Cache is a key-value store with per-key TTL. Get re-arms the TTL on every
// hit (sliding expiration), so an actively used key never expires mid-play.
type Cache interface {
	// Get returns the value for key and whether it was present. A hit
	// re-arms the key's TTL.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key with the given TTL. A zero TTL stores the
	// key without expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
