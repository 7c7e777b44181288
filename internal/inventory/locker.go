package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"movie-booking/pkg/cache"
	"movie-booking/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockBusy is returned by a Locker when another holder kept the lock.
var ErrLockBusy = errors.New("lock busy")

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// keyedMutex is the in-process per-showtime lock. Entries are dropped once no
// goroutine holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[uuid.UUID]*slot)}
}

func (k *keyedMutex) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	k.mu.Lock()
	s, ok := k.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[id] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			k.done(id, s)
		}, nil
	case <-ctx.Done():
		k.done(id, s)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) done(id uuid.UUID, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, id)
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}

// RedisLocker is a Locker over the Redis lock manager.
type RedisLocker struct {
	locks      *cache.LockManager
	ttl        time.Duration
	maxRetries int
	retryDelay time.Duration
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewRedisLocker(locks *cache.LockManager, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) *RedisLocker {
	return &RedisLocker{
		locks:      locks,
		ttl:        ttl,
		maxRetries: 10,
		retryDelay: 25 * time.Millisecond,
		metrics:    m,
		log:        log.With(zap.String("component", "redis_locker")),
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	lock, err := l.locks.AcquireLockWithRetry(ctx, key, l.ttl, l.maxRetries, l.retryDelay)

	status := "success"
	switch {
	case errors.Is(err, cache.ErrLockNotAcquired):
		status = "busy"
		err = ErrLockBusy
	case err != nil:
		status = "error"
	}
	if l.metrics != nil {
		l.metrics.DistributedLockDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			l.log.Warn("Failed to release distributed lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
