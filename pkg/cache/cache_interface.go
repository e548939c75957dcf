package cache

import (
	"context"
	"time"
)

// Cache is the contract of the read-through cache layer.
// Redis is the production driver; callers treat every error as a miss.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found=false means a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON encoded) with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern (SCAN + DEL).
	DeletePattern(ctx context.Context, pattern string) error

	// Counter primitives used by the admin login lockout.
	// Increment bumps an integer counter, creating it at 1.
	Increment(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// TTL is negative when the key is missing or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Ping(ctx context.Context) error
}
