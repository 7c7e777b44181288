// Package memory is an in-process implementation of the repository
// interfaces. It backs STORAGE_DRIVER=memory and the service tests.
//
// Transactions are journal based: every write registers an undo action and a
// failed WithTx replays them in reverse. Uncommitted writes are visible to
// other callers, so callers that need isolation serialize on their own (the
// inventory ledger holds a per-showtime lock around each unit of work).
package memory

import (
	"context"
	"sync"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*entity.User
	movies    map[uuid.UUID]*entity.Movie
	showtimes map[uuid.UUID]*entity.Showtime
	bookings  map[uuid.UUID]*entity.Booking
}

func NewStore() *Store {
	return &Store{
		users:     make(map[uuid.UUID]*entity.User),
		movies:    make(map[uuid.UUID]*entity.Movie),
		showtimes: make(map[uuid.UUID]*entity.Showtime),
		bookings:  make(map[uuid.UUID]*entity.Booking),
	}
}

// NewRepository returns a repository set backed by a fresh store.
func NewRepository() *repository.Repository {
	return NewStore().Repository()
}

func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Tx:       s,
		User:     &userRepo{s},
		Movie:    &movieRepo{s},
		Showtime: &showtimeRepo{s},
		Booking:  &bookingRepo{s},
	}
}

type journalKey struct{}

type journal struct {
	mu   sync.Mutex
	undo []func()
}

// WithTx implements repository.TxManager. Nested calls join the outer unit.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		return err
	}
	return nil
}

// record registers an undo action. Must be called with s.mu held; the action
// itself runs with s.mu held too.
func (s *Store) record(ctx context.Context, undo func()) {
	j, ok := ctx.Value(journalKey{}).(*journal)
	if !ok {
		return
	}
	j.mu.Lock()
	j.undo = append(j.undo, undo)
	j.mu.Unlock()
}

// page applies limit/offset to an already sorted slice.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
