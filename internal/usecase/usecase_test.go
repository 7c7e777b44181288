package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/memory"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/inventory"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEnv struct {
	repo      *repository.Repository
	svc       *Service
	ledger    *inventory.Ledger
	metrics   *metrics.Metrics
	publisher *recordingPublisher
	logs      *observer.ObservedLogs

	ledgerOpts []inventory.Option
}

type envOption func(*testEnv, *Deps, *utils.Config)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	config := &utils.Config{
		JWT:     utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
		Booking: utils.BookingConfig{MaxAttempts: 3},
		Admin:   utils.AdminConfig{Email: "admin@example.com"},
	}

	env := &testEnv{
		repo:      memory.NewRepository(),
		metrics:   metrics.NewWithRegistry(prometheus.NewRegistry()),
		publisher: &recordingPublisher{},
		logs:      logs,
	}

	deps := Deps{
		Tokens:    utils.NewTokenManager(config.JWT),
		Publisher: env.publisher,
		Metrics:   env.metrics,
	}
	for _, opt := range opts {
		opt(env, &deps, config)
	}

	ledgerOpts := append([]inventory.Option{inventory.WithMetrics(env.metrics)}, env.ledgerOpts...)
	env.ledger = inventory.NewLedger(env.repo.Showtime, env.repo.Tx, log, ledgerOpts...)
	deps.Ledger = env.ledger
	env.svc = NewService(env.repo, config, deps, log)
	return env
}

func withRepo(wrap func(*repository.Repository)) envOption {
	return func(env *testEnv, _ *Deps, _ *utils.Config) { wrap(env.repo) }
}

func withAvailability(a AvailabilityReader) envOption {
	return func(_ *testEnv, deps *Deps, _ *utils.Config) { deps.Availability = a }
}

// withLedgerCache lets the ledger write committed counts into c.
func withLedgerCache(c inventory.AvailabilityCache) envOption {
	return func(env *testEnv, _ *Deps, _ *utils.Config) {
		env.ledgerOpts = append(env.ledgerOpts, inventory.WithAvailabilityCache(c))
	}
}

func (env *testEnv) seedShowtime(t *testing.T, seats int, price float64) *entity.Showtime {
	t.Helper()
	ctx := context.Background()

	movie, err := env.svc.Movie.CreateMovie(ctx, &request.MovieRequest{
		Title:             "Oldboy " + uuid.NewString()[:8],
		Description:       "Revenge",
		ReleaseDate:       "2003-11-21",
		Genres:            []string{"Thriller"},
		DurationInMinutes: 120,
	})
	require.NoError(t, err)

	resp, err := env.svc.Showtime.CreateShowtime(ctx, &request.ShowtimeRequest{
		MovieID:    movie.ID,
		ShowDate:   "2026-11-01",
		ShowTime:   "19:30",
		Theater:    "Hall 1",
		TotalSeats: seats,
		Price:      price,
	})
	require.NoError(t, err)

	return env.showtime(t, resp.ID)
}

func (env *testEnv) showtime(t *testing.T, id string) *entity.Showtime {
	t.Helper()
	st, err := env.repo.Showtime.FindWithSeats(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	require.NotNil(t, st)
	return st
}

type publishedEvent struct {
	queue   string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{queue: queue, payload: payload})
	return p.err
}

func (p *recordingPublisher) queues() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.queue
	}
	return out
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}
