// Package locker provides per-key mutual exclusion for short units of work.
//
// The ledger serializes stamp issuance per card, card creation per
// (user, business) pair, and business counter updates per business with
// these locks; the billing reconciler takes the same business locks so
// webhook writes never race the ledger. Storage-level transactions then
// only have to protect against crashes, not interleavings.
package locker

import (
	"context"
	"time"
)

// ReleaseFunc releases a held lock. Safe to call exactly once.
type ReleaseFunc func()

// Locker acquires an exclusive lock on a key, waiting until the lock is
// available or the context is done. The ttl bounds how long a crashed
// holder can keep the key locked.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}
