package providers

import (
	"context"
	"time"
)

// CacheProvider defines the byte-level cache used by read-through repositories
type CacheProvider interface {
	// Get retrieves a value. found is false on a miss; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores a value with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys
	Delete(ctx context.Context, keys ...string) error
}
