package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/memory"
	"movie-booking/internal/data/repository"
	"movie-booking/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	repo     *repository.Repository
	ledger   *Ledger
	showtime *entity.Showtime
	logs     *observer.ObservedLogs
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, seats int, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewRepository()
	now := time.Now()

	movie := &entity.Movie{Base: entity.NewBase(now), Title: "Interstellar", ReleaseDate: now}
	require.NoError(t, repo.Movie.Create(ctx, movie))

	showtime := &entity.Showtime{
		Base:           entity.NewBase(now),
		MovieID:        movie.ID,
		ShowDate:       now.Truncate(24 * time.Hour),
		ShowTime:       "21:00",
		Theater:        "Hall 3",
		TotalSeats:     seats,
		AvailableSeats: seats,
		Price:          200,
		Seats:          entity.NewSeatLayout(seats, entity.DefaultSeatsPerRow),
	}
	require.NoError(t, repo.Showtime.Create(ctx, showtime))

	core, logs := observer.New(zap.WarnLevel)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	opts = append([]Option{WithMetrics(m)}, opts...)

	return &fixture{
		repo:     repo,
		ledger:   NewLedger(repo.Showtime, repo.Tx, zap.New(core), opts...),
		showtime: showtime,
		logs:     logs,
		metrics:  m,
	}
}

func (f *fixture) current(t *testing.T) *entity.Showtime {
	t.Helper()
	st, err := f.repo.Showtime.FindWithSeats(context.Background(), f.showtime.ID)
	require.NoError(t, err)
	require.NotNil(t, st)
	return st
}

func bookedSeats(st *entity.Showtime) []string {
	var out []string
	for _, seat := range st.Seats {
		if seat.IsBooked {
			out = append(out, seat.SeatNumber)
		}
	}
	return out
}

func TestReserve_ByCount(t *testing.T) {
	f := newFixture(t, 10)

	res, err := f.ledger.Reserve(context.Background(), f.showtime.ID, Request{Count: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"A1", "A2", "A3"}, res.SeatNumbers)
	assert.Equal(t, 200.0, res.PricePerSeat)
	assert.Equal(t, 600.0, res.TotalPrice)
	assert.Equal(t, 7, res.Remaining)

	st := f.current(t)
	assert.Equal(t, 7, st.AvailableSeats)
	assert.Equal(t, []string{"A1", "A2", "A3"}, bookedSeats(st))
}

func TestReserve_Insufficient(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	_, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 3})
	require.NoError(t, err)

	_, err = f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 8})
	require.ErrorIs(t, err, ErrInsufficientInventory)
	assert.EqualError(t, err, "only 7 seats left")

	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 8, insufficient.Requested)
	assert.Equal(t, 7, insufficient.Available)

	assert.Equal(t, 7, f.current(t).AvailableSeats)
}

func TestReserve_BySeatNumber(t *testing.T) {
	t.Run("picks exactly the requested seats", func(t *testing.T) {
		f := newFixture(t, 20)

		res, err := f.ledger.Reserve(context.Background(), f.showtime.ID, Request{SeatNumbers: []string{"b3", "A10"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"B3", "A10"}, res.SeatNumbers)
		assert.Equal(t, 400.0, res.TotalPrice)
		assert.Equal(t, 18, res.Remaining)
	})

	t.Run("all or nothing when one seat is taken", func(t *testing.T) {
		f := newFixture(t, 10)
		ctx := context.Background()

		_, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{SeatNumbers: []string{"A5"}})
		require.NoError(t, err)

		_, err = f.ledger.Reserve(ctx, f.showtime.ID, Request{SeatNumbers: []string{"A4", "A5", "A6"}})
		require.ErrorIs(t, err, ErrSeatAlreadyBooked)
		assert.Contains(t, err.Error(), "A5")

		st := f.current(t)
		assert.Equal(t, []string{"A5"}, bookedSeats(st))
		assert.Equal(t, 9, st.AvailableSeats)
	})

	t.Run("unknown seat books nothing", func(t *testing.T) {
		f := newFixture(t, 10)

		_, err := f.ledger.Reserve(context.Background(), f.showtime.ID, Request{SeatNumbers: []string{"A1", "Z9"}})
		require.ErrorIs(t, err, ErrUnknownSeat)
		assert.Contains(t, err.Error(), "Z9")
		assert.Empty(t, bookedSeats(f.current(t)))
	})
}

func TestReserve_Rejections(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	_, err := f.ledger.Reserve(ctx, uuid.New(), Request{Count: 1})
	assert.ErrorIs(t, err, ErrShowtimeNotFound)

	_, err = f.ledger.Reserve(ctx, f.showtime.ID, Request{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.ledger.Reserve(ctx, f.showtime.ID, Request{SeatNumbers: []string{"A1", "a1"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Equal(t, 5, f.current(t).AvailableSeats)
}

func TestReserveRelease_RoundTrip(t *testing.T) {
	for name, req := range map[string]Request{
		"count":        {Count: 4},
		"seat numbers": {SeatNumbers: []string{"A2", "B1", "B2"}},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 15)
			ctx := context.Background()
			before := f.current(t)

			res, err := f.ledger.Reserve(ctx, f.showtime.ID, req)
			require.NoError(t, err)
			require.NoError(t, f.ledger.Release(ctx, f.showtime.ID, res.SeatNumbers))

			after := f.current(t)
			assert.Equal(t, before.Seats, after.Seats)
			assert.Equal(t, before.AvailableSeats, after.AvailableSeats)
			assert.Zero(t, f.logs.Len())
		})
	}
}

func TestRelease_StaleSeatsAreObservableNoOps(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	_, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{SeatNumbers: []string{"A1"}})
	require.NoError(t, err)

	require.NoError(t, f.ledger.Release(ctx, f.showtime.ID, []string{"A1", "A2", "Q7"}))

	st := f.current(t)
	assert.Equal(t, 10, st.AvailableSeats)
	assert.Empty(t, bookedSeats(st))

	warnings := f.logs.FilterMessage("Releasing seats that are not booked").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.StaleReleasesTotal))

	// A second release of the same seats changes nothing.
	require.NoError(t, f.ledger.Release(ctx, f.showtime.ID, []string{"A1"}))
	assert.Equal(t, 10, f.current(t).AvailableSeats)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.StaleReleasesTotal))
}

func TestReserve_NoLostUpdate(t *testing.T) {
	const n = 25
	f := newFixture(t, n-1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, insufficient int
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Reserve(context.Background(), f.showtime.ID, Request{Count: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientInventory):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, n-1, ok)
	assert.Equal(t, 1, insufficient)

	st := f.current(t)
	assert.Zero(t, st.AvailableSeats)
	assert.Len(t, bookedSeats(st), n-1)
}

func TestAtomically_RollsBackInventory(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	boom := errors.New("booking insert failed")

	err := f.ledger.Atomically(ctx, f.showtime.ID, func(ctx context.Context) error {
		_, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 2})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	st := f.current(t)
	assert.Equal(t, 10, st.AvailableSeats)
	assert.Empty(t, bookedSeats(st))
}

type conflictingShowtimes struct {
	repository.ShowtimeRepository
}

func (conflictingShowtimes) UpdateInventory(context.Context, *entity.Showtime, []string, bool) error {
	return repository.ErrConflict
}

func TestReserve_VersionConflict(t *testing.T) {
	f := newFixture(t, 10)
	ledger := NewLedger(conflictingShowtimes{f.repo.Showtime}, f.repo.Tx, zap.NewNop(), WithMetrics(f.metrics))

	_, err := ledger.Reserve(context.Background(), f.showtime.ID, Request{Count: 1})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.InventoryConflictsTotal))
}

type stubLocker struct {
	err      error
	released int
}

func (s *stubLocker) Lock(context.Context, string) (func(), error) {
	if s.err != nil {
		return nil, s.err
	}
	return func() { s.released++ }, nil
}

func TestAtomically_DistributedLock(t *testing.T) {
	t.Run("busy lock is a conflict", func(t *testing.T) {
		f := newFixture(t, 5, WithLocker(&stubLocker{err: ErrLockBusy}))
		_, err := f.ledger.Reserve(context.Background(), f.showtime.ID, Request{Count: 1})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, 5, f.current(t).AvailableSeats)
	})

	t.Run("unreachable lock falls back to local lock", func(t *testing.T) {
		f := newFixture(t, 5, WithLocker(&stubLocker{err: errors.New("connection refused")}))
		_, err := f.ledger.Reserve(context.Background(), f.showtime.ID, Request{Count: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, f.logs.FilterMessage("Distributed lock unavailable, using local lock only").Len())
	})

	t.Run("lock is released once per unit", func(t *testing.T) {
		locker := &stubLocker{}
		f := newFixture(t, 5, WithLocker(locker))
		ctx := context.Background()

		err := f.ledger.Atomically(ctx, f.showtime.ID, func(ctx context.Context) error {
			res, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 2})
			if err != nil {
				return err
			}
			return f.ledger.Release(ctx, f.showtime.ID, res.SeatNumbers[:1])
		})
		require.NoError(t, err)
		assert.Equal(t, 1, locker.released)
		assert.Equal(t, 4, f.current(t).AvailableSeats)
	})
}

type cacheWrite struct {
	showtimeID uuid.UUID
	count      int
}

type recordingCache struct {
	mu     sync.Mutex
	writes []cacheWrite
}

func (c *recordingCache) SetAvailableCount(_ context.Context, id uuid.UUID, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, cacheWrite{showtimeID: id, count: count})
	return nil
}

func (c *recordingCache) counts() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, len(c.writes))
	for i, w := range c.writes {
		out[i] = w.count
	}
	return out
}

func TestAtomically_WritesCommittedCountToCache(t *testing.T) {
	cache := &recordingCache{}
	f := newFixture(t, 3, WithAvailabilityCache(cache))
	ctx := context.Background()

	_, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []cacheWrite{{showtimeID: f.showtime.ID, count: 2}}, cache.writes)

	t.Run("rejected reserve writes nothing", func(t *testing.T) {
		_, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 5})
		require.Error(t, err)
		assert.Equal(t, []int{2}, cache.counts())
	})

	t.Run("rolled back unit writes nothing", func(t *testing.T) {
		err := f.ledger.Atomically(ctx, f.showtime.ID, func(ctx context.Context) error {
			if _, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 1}); err != nil {
				return err
			}
			return errors.New("booking insert failed")
		})
		require.Error(t, err)
		assert.Equal(t, []int{2}, cache.counts())
	})

	t.Run("one write per unit with the final count", func(t *testing.T) {
		err := f.ledger.Atomically(ctx, f.showtime.ID, func(ctx context.Context) error {
			res, err := f.ledger.Reserve(ctx, f.showtime.ID, Request{Count: 2})
			if err != nil {
				return err
			}
			return f.ledger.Release(ctx, f.showtime.ID, res.SeatNumbers[:1])
		})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, cache.counts())
		assert.Equal(t, 1, f.current(t).AvailableSeats)
	})

	t.Run("unit without inventory changes writes nothing", func(t *testing.T) {
		require.NoError(t, f.ledger.Atomically(ctx, f.showtime.ID, func(context.Context) error { return nil }))
		assert.Equal(t, []int{2, 1}, cache.counts())
	})
}
