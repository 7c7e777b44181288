package usecase

import (
	"context"
	"time"

	"movie-booking/internal/data/repository"
	"movie-booking/internal/inventory"
	"movie-booking/pkg/messaging"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher sends booking events. Failures never undo a committed booking.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// AvailabilityReader is the read side of the showtime availability cache.
// FillAvailableCount must not overwrite a cached value.
type AvailabilityReader interface {
	GetAvailableCount(ctx context.Context, showtimeID uuid.UUID) (int, error)
	FillAvailableCount(ctx context.Context, showtimeID uuid.UUID, count int) error
}

// Deps are the collaborators shared by the services. Availability, Publisher
// and Metrics are optional.
type Deps struct {
	Tokens       *utils.TokenManager
	Ledger       *inventory.Ledger
	Availability AvailabilityReader
	Publisher    EventPublisher
	Metrics      *metrics.Metrics
}

type Service struct {
	Auth     AuthService
	User     UserService
	Movie    MovieService
	Showtime ShowtimeService
	Booking  BookingService
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	if deps.Publisher == nil {
		deps.Publisher = messaging.NopPublisher{}
	}

	return &Service{
		Auth:     NewAuthService(repo.User, deps.Tokens, config.Admin, log),
		User:     NewUserService(repo.User, log),
		Movie:    NewMovieService(repo, log),
		Showtime: NewShowtimeService(repo, deps.Availability, log),
		Booking: NewBookingService(repo, deps.Ledger, deps.Publisher, deps.Metrics, BookingOptions{
			MaxAttempts: config.Booking.MaxAttempts,
			RetryDelay:  config.Booking.RetryDelay,
		}, log),
	}
}

// BookingOptions bound the retries on inventory conflicts.
type BookingOptions struct {
	MaxAttempts int
	RetryDelay  time.Duration
}
