package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"

	"github.com/google/uuid"
)

type bookingRepo struct{ s *Store }

func cloneBooking(b *entity.Booking) *entity.Booking {
	c := *b
	c.SeatNumbers = slices.Clone(b.SeatNumbers)
	return &c
}

func (r *bookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.showtimes[booking.ShowtimeID]; !ok {
		return fmt.Errorf("create booking %s: %w", booking.OrderID, repository.ErrNotFound)
	}
	for _, b := range r.s.bookings {
		if b.ID == booking.ID || b.OrderID == booking.OrderID {
			return fmt.Errorf("create booking %s: %w", booking.OrderID, repository.ErrDuplicate)
		}
	}

	r.s.bookings[booking.ID] = cloneBooking(booking)
	r.s.record(ctx, func() { delete(r.s.bookings, booking.ID) })
	return nil
}

func (r *bookingRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if b, ok := r.s.bookings[id]; ok && b.UserID == userID {
		return cloneBooking(b), nil
	}
	return nil, nil
}

func (r *bookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.RLock()
	var bookings []*entity.Booking
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return page(bookings, limit, offset), nil
}

func (r *bookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *bookingRepo) DeleteForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok || b.UserID != userID {
		return nil, nil
	}

	delete(r.s.bookings, id)
	r.s.record(ctx, func() { r.s.bookings[id] = b })
	return cloneBooking(b), nil
}
