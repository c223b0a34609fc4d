// Package cache provides a handler-level key/value cache with TTL
// support. Two backends are available: an in-memory store and Redis.
// GetOrSet deduplicates concurrent loads for the same key.
package cache

import (
	"context"
	"errors"
	"time"
)

// Errors.
var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("cache: entry not found")
)

// Loader computes a value for GetOrSet on cache miss.
type Loader func(ctx context.Context) ([]byte, error)

// Cache is the backend-agnostic contract. Values are opaque bytes;
// callers own serialization.
type Cache interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. Zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetOrSet returns the cached value or runs the loader and caches
	// its result. Concurrent calls for the same key run the loader
	// once.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error)

	// GetOrDefault returns the cached value, or def on miss or error.
	GetOrDefault(ctx context.Context, key string, def []byte) []byte

	// DeletePrefix removes every key with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
