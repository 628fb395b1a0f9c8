package locker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stampkit/pkg/locker"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	t.Parallel()

	l := locker.NewMemoryLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		counter int
		inside  int
	)

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "card:1", time.Second)
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inside++
			assert.Equal(t, 1, inside, "two holders inside the critical section")
			counter++
			inside--
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, 20, counter)
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	t.Parallel()

	l := locker.NewMemoryLocker()
	ctx := context.Background()

	releaseA, err := l.Acquire(ctx, "a", time.Second)
	require.NoError(t, err)
	defer releaseA()

	// A held lock on "a" must not block "b".
	releaseB, err := l.Acquire(ctx, "b", time.Second)
	require.NoError(t, err)
	releaseB()
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	t.Parallel()

	l := locker.NewMemoryLocker()

	release, err := l.Acquire(context.Background(), "busy", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "busy", time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryLocker_Validation(t *testing.T) {
	t.Parallel()

	l := locker.NewMemoryLocker()

	_, err := l.Acquire(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, locker.ErrEmptyKey)

	_, err = l.Acquire(context.Background(), "key", 0)
	assert.ErrorIs(t, err, locker.ErrInvalidTTL)
}
