package locker

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implements Locker with in-process mutexes. Suitable for
// tests and single-instance deployments; it ignores TTLs since a crashed
// process releases its memory locks by definition.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

// Acquire blocks until the key lock is obtained or ctx is done.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	for {
		l.mu.Lock()
		holder, held := l.locks[key]
		if !held {
			ch := make(chan struct{})
			l.locks[key] = ch
			l.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, key)
					l.mu.Unlock()
					close(ch)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-holder:
			// Lock released; retry the claim.
		}
	}
}
