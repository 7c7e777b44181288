package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const duplicateShowtimeMessage = "A showtime for this movie, date, time, and theater already exists."

type ShowtimeService interface {
	GetShowtimes(ctx context.Context) ([]response.ShowtimeResponse, error)
	GetShowtimeByID(ctx context.Context, showtimeID string) (*response.ShowtimeResponse, error)
	GetShowtimesByMovie(ctx context.Context, movieID string) ([]response.ShowtimeResponse, error)
	GetSeatMap(ctx context.Context, showtimeID string) (*response.SeatMapResponse, error)
	CreateShowtime(ctx context.Context, req *request.ShowtimeRequest) (*response.ShowtimeResponse, error)
	UpdateShowtime(ctx context.Context, showtimeID string, req *request.ShowtimeUpdateRequest) (*response.ShowtimeResponse, error)
	DeleteShowtime(ctx context.Context, showtimeID string) error
}

type showtimeService struct {
	repo         *repository.Repository
	availability AvailabilityReader
	log          *zap.Logger
	now          func() time.Time
}

// NewShowtimeService builds the catalog service for showtimes. availability
// may be nil, in which case counts are read from the store.
func NewShowtimeService(repo *repository.Repository, availability AvailabilityReader, log *zap.Logger) ShowtimeService {
	return &showtimeService{
		repo:         repo,
		availability: availability,
		log:          log.With(zap.String("service", "showtime")),
		now:          time.Now,
	}
}

func (s *showtimeService) GetShowtimes(ctx context.Context) ([]response.ShowtimeResponse, error) {
	showtimes, err := s.repo.Showtime.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get showtimes", zap.Error(err))
		return nil, fmt.Errorf("get showtimes: %w", err)
	}
	return s.withMovies(ctx, showtimes), nil
}

func (s *showtimeService) GetShowtimeByID(ctx context.Context, showtimeID string) (*response.ShowtimeResponse, error) {
	showtime, err := s.findShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	showtime.AvailableSeats = s.availableSeats(ctx, showtime)

	movie, err := s.repo.Movie.FindByID(ctx, showtime.MovieID)
	if err != nil {
		s.log.Warn("Failed to load movie for showtime", zap.Error(err), zap.String("showtime_id", showtimeID))
	}

	resp := response.ShowtimeToResponse(showtime, movie)
	return &resp, nil
}

func (s *showtimeService) GetShowtimesByMovie(ctx context.Context, movieID string) ([]response.ShowtimeResponse, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, ErrMovieNotFound
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find movie", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("find movie %s: %w", movieID, err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	showtimes, err := s.repo.Showtime.FindByMovieID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get showtimes for movie", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("get showtimes for movie %s: %w", movieID, err)
	}

	out := make([]response.ShowtimeResponse, len(showtimes))
	for i, showtime := range showtimes {
		out[i] = response.ShowtimeToResponse(showtime, movie)
	}
	return out, nil
}

func (s *showtimeService) GetSeatMap(ctx context.Context, showtimeID string) (*response.SeatMapResponse, error) {
	id, err := uuid.Parse(showtimeID)
	if err != nil {
		return nil, ErrShowtimeNotFound
	}

	showtime, err := s.repo.Showtime.FindWithSeats(ctx, id)
	if err != nil {
		s.log.Error("Failed to load seat map", zap.Error(err), zap.String("showtime_id", showtimeID))
		return nil, fmt.Errorf("load seat map %s: %w", showtimeID, err)
	}
	if showtime == nil {
		return nil, ErrShowtimeNotFound
	}

	resp := response.SeatMapToResponse(showtime)
	return &resp, nil
}

func (s *showtimeService) CreateShowtime(ctx context.Context, req *request.ShowtimeRequest) (*response.ShowtimeResponse, error) {
	if err := validate(s.log, "Create showtime", req); err != nil {
		return nil, err
	}

	movieID, err := uuid.Parse(req.MovieID)
	if err != nil {
		return nil, invalidInput("movie_id: %v", err)
	}
	showDate, err := time.Parse(dateLayout, req.ShowDate)
	if err != nil {
		return nil, invalidInput("show_date: %v", err)
	}

	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		s.log.Error("Failed to find movie", zap.Error(err), zap.String("movie_id", req.MovieID))
		return nil, fmt.Errorf("find movie %s: %w", req.MovieID, err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	showtime := &entity.Showtime{
		Base:           entity.NewBase(s.now()),
		MovieID:        movieID,
		ShowDate:       showDate,
		ShowTime:       req.ShowTime,
		Theater:        strings.TrimSpace(req.Theater),
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Price:          req.Price,
		Seats:          entity.NewSeatLayout(req.TotalSeats, req.SeatsPerRow),
	}

	if err := s.repo.Showtime.Create(ctx, showtime); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, duplicateShowtimeMessage)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMovieNotFound
		}
		s.log.Error("Failed to create showtime", zap.Error(err), zap.String("movie_id", req.MovieID))
		return nil, fmt.Errorf("create showtime: %w", err)
	}

	s.log.Info("Showtime created",
		zap.String("showtime_id", showtime.ID.String()),
		zap.String("movie_id", req.MovieID),
		zap.Int("total_seats", showtime.TotalSeats),
	)

	resp := response.ShowtimeToResponse(showtime, movie)
	return &resp, nil
}

func (s *showtimeService) UpdateShowtime(ctx context.Context, showtimeID string, req *request.ShowtimeUpdateRequest) (*response.ShowtimeResponse, error) {
	if err := validate(s.log, "Update showtime", req); err != nil {
		return nil, err
	}

	showtime, err := s.findShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	if req.MovieID != nil && *req.MovieID != showtime.MovieID.String() {
		return nil, invalidInput("Cannot change movie for an existing showtime.")
	}
	if req.TotalSeats != nil && *req.TotalSeats != showtime.TotalSeats {
		return nil, invalidInput("Cannot change the seat capacity of an existing showtime.")
	}

	if req.ShowDate != nil {
		showDate, err := time.Parse(dateLayout, *req.ShowDate)
		if err != nil {
			return nil, invalidInput("show_date: %v", err)
		}
		showtime.ShowDate = showDate
	}
	if req.ShowTime != nil {
		showtime.ShowTime = *req.ShowTime
	}
	if req.Theater != nil {
		showtime.Theater = strings.TrimSpace(*req.Theater)
	}
	if req.Price != nil {
		showtime.Price = *req.Price
	}
	showtime.UpdatedAt = s.now()

	if err := s.repo.Showtime.UpdateDetails(ctx, showtime); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, duplicateShowtimeMessage)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrShowtimeNotFound
		}
		s.log.Error("Failed to update showtime", zap.Error(err), zap.String("showtime_id", showtimeID))
		return nil, fmt.Errorf("update showtime: %w", err)
	}

	s.log.Info("Showtime updated", zap.String("showtime_id", showtimeID))

	movie, _ := s.repo.Movie.FindByID(ctx, showtime.MovieID)
	resp := response.ShowtimeToResponse(showtime, movie)
	return &resp, nil
}

func (s *showtimeService) DeleteShowtime(ctx context.Context, showtimeID string) error {
	id, err := uuid.Parse(showtimeID)
	if err != nil {
		return ErrShowtimeNotFound
	}

	err = s.repo.Showtime.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrShowtimeNotFound
	case errors.Is(err, repository.ErrInUse):
		return fmt.Errorf("%w: showtime has bookings", ErrInUse)
	case err != nil:
		return fmt.Errorf("delete showtime: %w", err)
	}

	return nil
}

func (s *showtimeService) findShowtime(ctx context.Context, showtimeID string) (*entity.Showtime, error) {
	id, err := uuid.Parse(showtimeID)
	if err != nil {
		return nil, ErrShowtimeNotFound
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find showtime", zap.Error(err), zap.String("showtime_id", showtimeID))
		return nil, fmt.Errorf("find showtime %s: %w", showtimeID, err)
	}
	if showtime == nil {
		return nil, ErrShowtimeNotFound
	}
	return showtime, nil
}

// availableSeats prefers the cached count and fills the cache on a miss.
// Cache errors fall back to the stored count. The fill is set-if-absent, so a
// count the ledger wrote after our read wins.
func (s *showtimeService) availableSeats(ctx context.Context, showtime *entity.Showtime) int {
	if s.availability == nil {
		return showtime.AvailableSeats
	}

	count, err := s.availability.GetAvailableCount(ctx, showtime.ID)
	if err == nil {
		return count
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("Availability cache read failed", zap.Error(err), zap.String("showtime_id", showtime.ID.String()))
		return showtime.AvailableSeats
	}

	if err := s.availability.FillAvailableCount(ctx, showtime.ID, showtime.AvailableSeats); err != nil {
		s.log.Warn("Availability cache write failed", zap.Error(err), zap.String("showtime_id", showtime.ID.String()))
	}
	return showtime.AvailableSeats
}

func (s *showtimeService) withMovies(ctx context.Context, showtimes []*entity.Showtime) []response.ShowtimeResponse {
	movies := make(map[uuid.UUID]*entity.Movie)
	out := make([]response.ShowtimeResponse, len(showtimes))
	for i, showtime := range showtimes {
		movie, ok := movies[showtime.MovieID]
		if !ok {
			var err error
			movie, err = s.repo.Movie.FindByID(ctx, showtime.MovieID)
			if err != nil {
				s.log.Warn("Failed to load movie for showtime", zap.Error(err), zap.String("movie_id", showtime.MovieID.String()))
			}
			movies[showtime.MovieID] = movie
		}
		out[i] = response.ShowtimeToResponse(showtime, movie)
	}
	return out
}
