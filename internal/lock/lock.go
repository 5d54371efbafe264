// Package lock provides an ephemeral key-value store with TTL semantics used
// for verification mutexes and resend throttles.
package lock

import (
	"context"
	"time"
)

// Store is an ephemeral lock store. Keys expire after their TTL; an expired
// key behaves as if it was never set.
type Store interface {
	// TryAcquire sets the key with the given TTL if it does not already
	// exist. It returns true when the key was set by this call.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Exists reports whether the key is currently held.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining lifetime of the key. It returns zero when
	// the key does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Release deletes the key. Releasing an absent key is not an error.
	Release(ctx context.Context, key string) error
}
