package memory

import (
	"context"
	"fmt"
	"sort"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"

	"github.com/google/uuid"
)

type showtimeRepo struct{ s *Store }

// withoutSeats copies the catalog view of a showtime.
func withoutSeats(st *entity.Showtime) *entity.Showtime {
	c := *st
	c.Seats = nil
	return &c
}

func sameSlot(a, b *entity.Showtime) bool {
	return a.ID != b.ID &&
		a.MovieID == b.MovieID &&
		a.ShowDate.Equal(b.ShowDate) &&
		a.ShowTime == b.ShowTime &&
		a.Theater == b.Theater
}

func (r *showtimeRepo) Create(ctx context.Context, showtime *entity.Showtime) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.movies[showtime.MovieID]; !ok {
		return fmt.Errorf("create showtime for movie %s: %w", showtime.MovieID, repository.ErrNotFound)
	}
	for _, other := range r.s.showtimes {
		if sameSlot(showtime, other) {
			return fmt.Errorf("create showtime: %w", repository.ErrDuplicate)
		}
	}

	r.s.showtimes[showtime.ID] = showtime.Clone()
	r.s.record(ctx, func() { delete(r.s.showtimes, showtime.ID) })
	return nil
}

func (r *showtimeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Showtime, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if st, ok := r.s.showtimes[id]; ok {
		return withoutSeats(st), nil
	}
	return nil, nil
}

func (r *showtimeRepo) FindAll(_ context.Context) ([]*entity.Showtime, error) {
	return r.list(func(*entity.Showtime) bool { return true }), nil
}

func (r *showtimeRepo) FindByMovieID(_ context.Context, movieID uuid.UUID) ([]*entity.Showtime, error) {
	return r.list(func(st *entity.Showtime) bool { return st.MovieID == movieID }), nil
}

func (r *showtimeRepo) list(match func(*entity.Showtime) bool) []*entity.Showtime {
	r.s.mu.RLock()
	var out []*entity.Showtime
	for _, st := range r.s.showtimes {
		if match(st) {
			out = append(out, withoutSeats(st))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ShowDate.Equal(out[j].ShowDate) {
			return out[i].ShowDate.Before(out[j].ShowDate)
		}
		return out[i].ShowTime < out[j].ShowTime
	})
	return out
}

func (r *showtimeRepo) CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error) {
	showtimes, _ := r.FindByMovieID(ctx, movieID)
	return int64(len(showtimes)), nil
}

func (r *showtimeRepo) UpdateDetails(ctx context.Context, showtime *entity.Showtime) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.showtimes[showtime.ID]
	if !ok {
		return fmt.Errorf("update showtime %s: %w", showtime.ID, repository.ErrNotFound)
	}

	updated := prev.Clone()
	updated.ShowDate = showtime.ShowDate
	updated.ShowTime = showtime.ShowTime
	updated.Theater = showtime.Theater
	updated.Price = showtime.Price
	updated.UpdatedAt = showtime.UpdatedAt

	for _, other := range r.s.showtimes {
		if sameSlot(updated, other) {
			return fmt.Errorf("update showtime %s: %w", showtime.ID, repository.ErrDuplicate)
		}
	}

	r.s.showtimes[showtime.ID] = updated
	r.s.record(ctx, func() { r.s.showtimes[showtime.ID] = prev })
	return nil
}

func (r *showtimeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.showtimes[id]
	if !ok {
		return fmt.Errorf("delete showtime %s: %w", id, repository.ErrNotFound)
	}
	for _, b := range r.s.bookings {
		if b.ShowtimeID == id {
			return fmt.Errorf("delete showtime %s: %w", id, repository.ErrInUse)
		}
	}

	delete(r.s.showtimes, id)
	r.s.record(ctx, func() { r.s.showtimes[id] = prev })
	return nil
}

func (r *showtimeRepo) FindWithSeats(_ context.Context, id uuid.UUID) (*entity.Showtime, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if st, ok := r.s.showtimes[id]; ok {
		return st.Clone(), nil
	}
	return nil, nil
}

func (r *showtimeRepo) UpdateInventory(ctx context.Context, showtime *entity.Showtime, seatNumbers []string, booked bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.showtimes[showtime.ID]
	if !ok || prev.Version != showtime.Version {
		return fmt.Errorf("update inventory of showtime %s: %w", showtime.ID, repository.ErrConflict)
	}

	updated := prev.Clone()
	for _, number := range seatNumbers {
		seat := updated.Seat(number)
		if seat == nil || seat.IsBooked == booked {
			return fmt.Errorf("update seats of showtime %s: %w", showtime.ID, repository.ErrConflict)
		}
		seat.IsBooked = booked
	}
	updated.AvailableSeats = showtime.AvailableSeats
	updated.Version++

	r.s.showtimes[showtime.ID] = updated
	r.s.record(ctx, func() { r.s.showtimes[showtime.ID] = prev })

	showtime.Version = updated.Version
	return nil
}
