package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("serializes the same key", func(t *testing.T) {
		k := newKeyedMutex()
		id := uuid.New()

		var mu sync.Mutex
		inside, maxInside := 0, 0
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := k.Lock(context.Background(), id)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				inside++
				maxInside = max(maxInside, inside)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, maxInside)
		assert.Zero(t, k.size())
	})

	t.Run("different keys do not block", func(t *testing.T) {
		k := newKeyedMutex()
		unlock, err := k.Lock(context.Background(), uuid.New())
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		unlock2, err := k.Lock(ctx, uuid.New())
		require.NoError(t, err)
		unlock2()
	})

	t.Run("waiter gives up on context", func(t *testing.T) {
		k := newKeyedMutex()
		id := uuid.New()
		unlock, err := k.Lock(context.Background(), id)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = k.Lock(ctx, id)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		assert.Zero(t, k.size())
	})
}
