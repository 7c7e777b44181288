package repository

import (
	"context"

	"movie-booking/pkg/database"

	"go.uber.org/zap"
)

// TxManager runs fn as one unit of work. Repository calls made with the ctx
// handed to fn take part in it.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Repository struct {
	Tx       TxManager
	User     UserRepository
	Movie    MovieRepository
	Showtime ShowtimeRepository
	Booking  BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:       db,
		User:     NewUserRepository(db, log),
		Movie:    NewMovieRepository(db, log),
		Showtime: NewShowtimeRepository(db, log),
		Booking:  NewBookingRepository(db, log),
	}
}
