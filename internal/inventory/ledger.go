// Package inventory owns the seat inventory of showtimes. Every change to a
// showtime's seat flags and available count goes through a Ledger.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityCache receives the available count after every committed
// inventory change.
type AvailabilityCache interface {
	SetAvailableCount(ctx context.Context, showtimeID uuid.UUID, count int) error
}

// Reservation is the result of a successful Reserve. Prices are a snapshot
// taken from the showtime at reservation time.
type Reservation struct {
	ShowtimeID   uuid.UUID
	SeatNumbers  []string
	PricePerSeat float64
	TotalPrice   float64
	Remaining    int
}

type Ledger struct {
	showtimes repository.ShowtimeRepository
	tx        repository.TxManager
	locks     *keyedMutex
	locker    Locker
	cache     AvailabilityCache
	metrics   *metrics.Metrics
	log       *zap.Logger
}

type Option func(*Ledger)

// WithLocker adds a cross-process lock taken after the in-process one.
func WithLocker(locker Locker) Option {
	return func(l *Ledger) { l.locker = locker }
}

func WithAvailabilityCache(c AvailabilityCache) Option {
	return func(l *Ledger) { l.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func NewLedger(showtimes repository.ShowtimeRepository, tx repository.TxManager, log *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		showtimes: showtimes,
		tx:        tx,
		locks:     newKeyedMutex(),
		log:       log.With(zap.String("component", "inventory_ledger")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// unit is the showtime lock held by an Atomically call. available is the
// count last written inside it, -1 until inventory changes.
type unit struct {
	showtimeID uuid.UUID
	available  int
}

type unitKey struct{}

func heldUnit(ctx context.Context, showtimeID uuid.UUID) *unit {
	u, _ := ctx.Value(unitKey{}).(*unit)
	if u == nil || u.showtimeID != showtimeID {
		return nil
	}
	return u
}

func recordAvailable(ctx context.Context, showtime *entity.Showtime) {
	if u := heldUnit(ctx, showtime.ID); u != nil {
		u.available = showtime.AvailableSeats
	}
}

// Atomically runs fn in one transaction while holding the showtime's lock.
// Reserve and Release called from fn with the ctx it receives join that
// transaction, so inventory changes and other writes in fn commit or roll
// back together.
func (l *Ledger) Atomically(ctx context.Context, showtimeID uuid.UUID, fn func(ctx context.Context) error) error {
	if heldUnit(ctx, showtimeID) != nil {
		return l.tx.WithTx(ctx, fn)
	}

	unlock, err := l.locks.Lock(ctx, showtimeID)
	if err != nil {
		return fmt.Errorf("lock showtime %s: %w", showtimeID, err)
	}
	defer unlock()

	if l.locker != nil {
		release, err := l.locker.Lock(ctx, "showtime:"+showtimeID.String())
		switch {
		case errors.Is(err, ErrLockBusy):
			return fmt.Errorf("lock showtime %s: %w", showtimeID, ErrConflict)
		case err != nil:
			l.log.Warn("Distributed lock unavailable, using local lock only",
				zap.String("showtime_id", showtimeID.String()),
				zap.Error(err),
			)
		default:
			defer release()
		}
	}

	u := &unit{showtimeID: showtimeID, available: -1}
	if err := l.tx.WithTx(context.WithValue(ctx, unitKey{}, u), fn); err != nil {
		return err
	}

	// Still under both locks, so cache writes land in commit order.
	if l.cache != nil && u.available >= 0 {
		if err := l.cache.SetAvailableCount(context.WithoutCancel(ctx), showtimeID, u.available); err != nil {
			l.log.Warn("Failed to update availability cache",
				zap.String("showtime_id", showtimeID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Reserve books the requested seats all-or-nothing.
func (l *Ledger) Reserve(ctx context.Context, showtimeID uuid.UUID, req Request) (*Reservation, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	var reservation *Reservation
	err = l.Atomically(ctx, showtimeID, func(ctx context.Context) error {
		showtime, err := l.showtimes.FindWithSeats(ctx, showtimeID)
		if err != nil {
			return fmt.Errorf("load showtime %s: %w", showtimeID, err)
		}
		if showtime == nil {
			return fmt.Errorf("showtime %s: %w", showtimeID, ErrShowtimeNotFound)
		}

		seats := req.SeatNumbers
		if len(seats) == 0 {
			available := showtime.CountAvailable()
			if req.Count > available {
				return &InsufficientInventoryError{Requested: req.Count, Available: available}
			}
			seats = showtime.FreeSeats(req.Count)
		} else if err := checkSeats(showtime, seats); err != nil {
			return err
		}

		for _, number := range seats {
			showtime.Seat(number).IsBooked = true
		}
		showtime.AvailableSeats = showtime.CountAvailable()

		if err := l.showtimes.UpdateInventory(ctx, showtime, seats, true); err != nil {
			return l.writeError(showtimeID, err)
		}
		recordAvailable(ctx, showtime)

		reservation = &Reservation{
			ShowtimeID:   showtimeID,
			SeatNumbers:  seats,
			PricePerSeat: showtime.Price,
			TotalPrice:   float64(len(seats)) * showtime.Price,
			Remaining:    showtime.AvailableSeats,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Debug("Seats reserved",
		zap.String("showtime_id", showtimeID.String()),
		zap.Strings("seats", reservation.SeatNumbers),
		zap.Int("remaining", reservation.Remaining),
	)
	return reservation, nil
}

// Release returns seats to the showtime. Seats that are unknown or not booked
// are skipped with a warning.
func (l *Ledger) Release(ctx context.Context, showtimeID uuid.UUID, seatNumbers []string) error {
	seatNumbers, err := NormalizeSeatNumbers(seatNumbers)
	if err != nil {
		return err
	}

	return l.Atomically(ctx, showtimeID, func(ctx context.Context) error {
		showtime, err := l.showtimes.FindWithSeats(ctx, showtimeID)
		if err != nil {
			return fmt.Errorf("load showtime %s: %w", showtimeID, err)
		}
		if showtime == nil {
			return fmt.Errorf("showtime %s: %w", showtimeID, ErrShowtimeNotFound)
		}

		var freed, stale []string
		for _, number := range seatNumbers {
			seat := showtime.Seat(number)
			if seat == nil || !seat.IsBooked {
				stale = append(stale, number)
				continue
			}
			seat.IsBooked = false
			freed = append(freed, number)
		}

		if len(stale) > 0 {
			l.log.Warn("Releasing seats that are not booked",
				zap.String("showtime_id", showtimeID.String()),
				zap.Strings("seats", stale),
			)
			if l.metrics != nil {
				l.metrics.StaleReleasesTotal.Add(float64(len(stale)))
			}
		}
		if len(freed) == 0 {
			return nil
		}

		available := showtime.CountAvailable()
		if expected := showtime.AvailableSeats + len(freed); expected != available {
			l.log.Warn("Available seat counter drifted from seat flags",
				zap.String("showtime_id", showtimeID.String()),
				zap.Int("counter", expected),
				zap.Int("flags", available),
			)
		}
		if available > showtime.TotalSeats {
			l.log.Warn("Available seats exceed capacity, clamping",
				zap.String("showtime_id", showtimeID.String()),
				zap.Int("available", available),
				zap.Int("total", showtime.TotalSeats),
			)
			available = showtime.TotalSeats
		}
		showtime.AvailableSeats = available

		if err := l.showtimes.UpdateInventory(ctx, showtime, freed, false); err != nil {
			return l.writeError(showtimeID, err)
		}
		recordAvailable(ctx, showtime)
		return nil
	})
}

// checkSeats verifies every requested seat before any is taken.
func checkSeats(showtime *entity.Showtime, seats []string) error {
	var unknown, booked []string
	for _, number := range seats {
		seat := showtime.Seat(number)
		switch {
		case seat == nil:
			unknown = append(unknown, number)
		case seat.IsBooked:
			booked = append(booked, number)
		}
	}

	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSeat, strings.Join(unknown, ", "))
	}
	if len(booked) > 0 {
		return fmt.Errorf("%w: %s", ErrSeatAlreadyBooked, strings.Join(booked, ", "))
	}
	return nil
}

func (l *Ledger) writeError(showtimeID uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		if l.metrics != nil {
			l.metrics.InventoryConflictsTotal.Inc()
		}
		return fmt.Errorf("showtime %s: %w", showtimeID, ErrConflict)
	}
	return fmt.Errorf("update inventory of showtime %s: %w", showtimeID, err)
}
