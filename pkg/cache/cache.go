// Package cache provides the storage behind bracketeer's caching: a small
// [Cache] interface with file, null, Redis and MongoDB backends, a [Keyer]
// that derives keys from every input affecting a cached value, and the
// retry helpers used by the HTTP clients.
//
// Only derived or immutable data is cached: problem markup (addressed by
// problem identifier) and rendered artifacts (addressed by a hash of the
// match list and the render options). Match lists change as a tournament
// progresses and are always fetched fresh.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores opaque byte values under string keys with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases connections held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Pinger is implemented by caches backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Default TTLs.
const (
	TTLHTTP     = 24 * time.Hour
	TTLProblem  = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend       string
	Dir           string // file backend
	RedisURL      string // redis backend, e.g. redis://localhost:6379/0
	MongoURI      string // mongo backend
	MongoDatabase string
}

// Open creates the cache described by opts. An empty backend means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileCache(opts.Dir)
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
