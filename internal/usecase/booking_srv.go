package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/event"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/internal/inventory"
	"movie-booking/pkg/messaging"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	// CancelBooking is owner scoped. A booking that is gone or belongs to
	// someone else is ErrBookingNotFound and releases nothing.
	CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) error
	ListBookingsForUser(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	repo      *repository.Repository
	ledger    *inventory.Ledger
	publisher EventPublisher
	metrics   *metrics.Metrics
	opts      BookingOptions
	tracer    trace.Tracer
	log       *zap.Logger
	now       func() time.Time
	orderID   func() string
}

func NewBookingService(
	repo *repository.Repository,
	ledger *inventory.Ledger,
	publisher EventPublisher,
	m *metrics.Metrics,
	opts BookingOptions,
	log *zap.Logger,
) BookingService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}

	return &bookingService{
		repo:      repo,
		ledger:    ledger,
		publisher: publisher,
		metrics:   m,
		opts:      opts,
		tracer:    otel.Tracer("movie-booking/booking"),
		log:       log.With(zap.String("service", "booking")),
		now:       time.Now,
		orderID:   utils.GenerateOrderID,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (_ *response.BookingResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.create", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("showtime.id", req.ShowtimeID),
	))
	defer func() {
		endSpan(span, err)
		if s.metrics != nil {
			s.metrics.ReservationsTotal.WithLabelValues(outcome(err)).Inc()
		}
	}()

	// 1. Validate the request shape before touching inventory
	if err := validate(s.log, "Create booking", req); err != nil {
		return nil, err
	}

	seatReq, err := inventory.Request{Count: req.SeatCount, SeatNumbers: req.SeatNumbers}.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, invalidInput("showtime_id: %v", err)
	}

	// 2. Showtime must exist
	showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
	if err != nil {
		s.log.Error("Failed to find showtime", zap.Error(err), zap.String("showtime_id", req.ShowtimeID))
		return nil, fmt.Errorf("find showtime %s: %w", showtimeID, err)
	}
	if showtime == nil {
		return nil, fmt.Errorf("showtime %s: %w", showtimeID, ErrShowtimeNotFound)
	}

	// 3. Reserve seats and save the booking as one unit
	var (
		booking   *entity.Booking
		remaining int
	)
	err = s.retryOnConflict(ctx, "create booking", func() error {
		return s.ledger.Atomically(ctx, showtimeID, func(ctx context.Context) error {
			reservation, err := s.ledger.Reserve(ctx, showtimeID, seatReq)
			if err != nil {
				return err
			}

			booking = &entity.Booking{
				BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: s.now()},
				OrderID:      s.orderID(),
				UserID:       userID,
				ShowtimeID:   showtimeID,
				SeatCount:    len(reservation.SeatNumbers),
				SeatNumbers:  reservation.SeatNumbers,
				PricePerSeat: reservation.PricePerSeat,
				TotalPrice:   reservation.TotalPrice,
				Status:       entity.BookingStatusConfirmed,
			}
			remaining = reservation.Remaining

			if err := s.repo.Booking.Create(ctx, booking); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return fmt.Errorf("order id %s taken: %w", booking.OrderID, inventory.ErrConflict)
				}
				return fmt.Errorf("save booking: %w", err)
			}
			return nil
		})
	})
	if errors.Is(err, repository.ErrNotFound) {
		err = s.missingReference(ctx, userID, showtimeID)
	}
	if err != nil {
		s.logRejected("Booking rejected", err,
			zap.String("user_id", userID.String()),
			zap.String("showtime_id", req.ShowtimeID),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("booking.order_id", booking.OrderID),
		attribute.Int("booking.seat_count", booking.SeatCount),
	)
	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("user_id", userID.String()),
		zap.Strings("seats", booking.SeatNumbers),
		zap.Float64("total_price", booking.TotalPrice),
	)

	s.publish(ctx, messaging.QueueBookingCreated, booking, entity.BookingStatusConfirmed)

	// 4. Join showtime and movie for display
	showtime.AvailableSeats = remaining
	movie, err := s.repo.Movie.FindByID(ctx, showtime.MovieID)
	if err != nil {
		s.log.Warn("Failed to load movie for booking", zap.Error(err), zap.String("movie_id", showtime.MovieID.String()))
	}

	resp := response.BookingToResponse(booking, showtime, movie)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "booking.cancel", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("booking.id", bookingID),
	))
	defer func() {
		endSpan(span, err)
		if s.metrics != nil {
			s.metrics.CancellationsTotal.WithLabelValues(outcome(err)).Inc()
		}
	}()

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return ErrBookingNotFound
	}

	// 1. Owner-scoped lookup to find the showtime to lock
	existing, err := s.repo.Booking.FindByIDForUser(ctx, id, userID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", bookingID))
		return fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	if existing == nil {
		return ErrBookingNotFound
	}

	// 2. Delete and release together. Only the call that actually removed the
	// row releases seats.
	var removed *entity.Booking
	err = s.retryOnConflict(ctx, "cancel booking", func() error {
		return s.ledger.Atomically(ctx, existing.ShowtimeID, func(ctx context.Context) error {
			var err error
			removed, err = s.repo.Booking.DeleteForUser(ctx, id, userID)
			if err != nil {
				return fmt.Errorf("delete booking %s: %w", id, err)
			}
			if removed == nil {
				return ErrBookingNotFound
			}
			return s.ledger.Release(ctx, removed.ShowtimeID, removed.SeatNumbers)
		})
	})
	if err != nil {
		s.logRejected("Cancellation rejected", err,
			zap.String("user_id", userID.String()),
			zap.String("booking_id", bookingID),
		)
		return err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("order_id", removed.OrderID),
		zap.Strings("seats", removed.SeatNumbers),
	)

	s.publish(ctx, messaging.QueueBookingCancelled, removed, entity.BookingStatusCancelled)
	return nil
}

func (s *bookingService) ListBookingsForUser(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("page", req.Page),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	j := newJoiner(s.repo, s.log)
	out := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		showtime, movie := j.lookup(ctx, booking.ShowtimeID)
		out[i] = response.BookingToResponse(booking, showtime, movie)
	}

	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.repo.Booking.FindByIDForUser(ctx, id, userID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	showtime, movie := newJoiner(s.repo, s.log).lookup(ctx, booking.ShowtimeID)
	resp := response.BookingToResponse(booking, showtime, movie)
	return &resp, nil
}

// missingReference names the row a booking insert found missing. The showtime
// can be deleted after the lookup, and a token can outlive its user.
func (s *bookingService) missingReference(ctx context.Context, userID, showtimeID uuid.UUID) error {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err == nil && user == nil {
		return fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	return fmt.Errorf("showtime %s: %w", showtimeID, ErrShowtimeNotFound)
}

// retryOnConflict reruns fn while it fails with inventory.ErrConflict, backing
// off linearly. Business rejections are returned at once.
func (s *bookingService) retryOnConflict(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, inventory.ErrConflict) || attempt == s.opts.MaxAttempts {
			break
		}

		s.log.Debug("Inventory conflict, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.RetryDelay * time.Duration(attempt)):
		}
	}
	return err
}

func (s *bookingService) publish(ctx context.Context, queue string, booking *entity.Booking, status entity.BookingStatus) {
	msg := event.NewBookingEvent(booking, status, s.now())
	if err := s.publisher.Publish(ctx, queue, msg); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("queue", queue),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}

// logRejected logs expected rejections at info and everything else at error.
func (s *bookingService) logRejected(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	switch outcome(err) {
	case "rejected", "invalid":
		s.log.Info(msg, fields...)
	case "conflict":
		s.log.Warn(msg, fields...)
	default:
		s.log.Error(msg, fields...)
	}
}

// outcome is the result label of the booking counters.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, inventory.ErrConflict):
		return "conflict"
	case errors.Is(err, ErrShowtimeNotFound),
		errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, inventory.ErrInsufficientInventory),
		errors.Is(err, inventory.ErrUnknownSeat),
		errors.Is(err, inventory.ErrSeatAlreadyBooked):
		return "rejected"
	default:
		return "error"
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// joiner resolves showtimes and movies for booking responses, loading each
// at most once.
type joiner struct {
	repo      *repository.Repository
	log       *zap.Logger
	showtimes map[uuid.UUID]*entity.Showtime
	movies    map[uuid.UUID]*entity.Movie
}

func newJoiner(repo *repository.Repository, log *zap.Logger) *joiner {
	return &joiner{
		repo:      repo,
		log:       log,
		showtimes: make(map[uuid.UUID]*entity.Showtime),
		movies:    make(map[uuid.UUID]*entity.Movie),
	}
}

func (j *joiner) lookup(ctx context.Context, showtimeID uuid.UUID) (*entity.Showtime, *entity.Movie) {
	showtime, ok := j.showtimes[showtimeID]
	if !ok {
		var err error
		if showtime, err = j.repo.Showtime.FindByID(ctx, showtimeID); err != nil {
			j.log.Warn("Failed to load showtime for booking", zap.Error(err), zap.String("showtime_id", showtimeID.String()))
		}
		j.showtimes[showtimeID] = showtime
	}
	if showtime == nil {
		return nil, nil
	}

	movie, ok := j.movies[showtime.MovieID]
	if !ok {
		var err error
		if movie, err = j.repo.Movie.FindByID(ctx, showtime.MovieID); err != nil {
			j.log.Warn("Failed to load movie for booking", zap.Error(err), zap.String("movie_id", showtime.MovieID.String()))
		}
		j.movies[showtime.MovieID] = movie
	}
	return showtime, movie
}
