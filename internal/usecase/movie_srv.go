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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type MovieService interface {
	GetMovies(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MovieResponse], error)
	GetMovieByID(ctx context.Context, movieID string) (*response.MovieDetailResponse, error)
	CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error)
	UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error)
	DeleteMovie(ctx context.Context, movieID string) error
	// SeedMovies fills an empty catalog with the default movies and reports
	// how many were added.
	SeedMovies(ctx context.Context) (int, error)
}

type movieService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewMovieService(
	repo *repository.Repository,
	log *zap.Logger,
) MovieService {
	return &movieService{
		repo: repo,
		log:  log.With(zap.String("service", "movie")),
		now:  time.Now,
	}
}

func (s *movieService) GetMovies(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MovieResponse], error) {
	movies, err := s.repo.Movie.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get movies",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get movies: %w", err)
	}

	total, err := s.repo.Movie.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count movies", zap.Error(err))
		return nil, fmt.Errorf("count movies: %w", err)
	}

	movieResponses := make([]response.MovieResponse, len(movies))
	for i, movie := range movies {
		movieResponses[i] = response.MovieToResponse(movie)
	}

	return response.NewPaginatedResponse(movieResponses, req.Page, req.Limit(), total), nil
}

func (s *movieService) GetMovieByID(ctx context.Context, movieID string) (*response.MovieDetailResponse, error) {
	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	showtimes, err := s.repo.Showtime.FindByMovieID(ctx, movie.ID)
	if err != nil {
		s.log.Error("Failed to get showtimes for movie", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("get showtimes for movie %s: %w", movieID, err)
	}

	showtimeResponses := make([]response.ShowtimeResponse, len(showtimes))
	for i, showtime := range showtimes {
		showtimeResponses[i] = response.ShowtimeToResponse(showtime, nil)
	}

	return &response.MovieDetailResponse{
		MovieResponse: response.MovieToResponse(movie),
		Showtimes:     showtimeResponses,
	}, nil
}

func (s *movieService) CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error) {
	if err := validate(s.log, "Create movie", req); err != nil {
		return nil, err
	}

	releaseDate, err := time.Parse(dateLayout, req.ReleaseDate)
	if err != nil {
		return nil, invalidInput("release_date: %v", err)
	}

	movie := &entity.Movie{
		Base:              entity.NewBase(s.now()),
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		ReleaseDate:       releaseDate,
		Genres:            req.Genres,
		DurationInMinutes: req.DurationInMinutes,
		PosterURL:         req.PosterURL,
		TrailerURL:        req.TrailerURL,
	}

	if err := s.repo.Movie.Create(ctx, movie); err != nil {
		s.log.Error("Failed to create movie", zap.Error(err), zap.String("title", movie.Title))
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.log.Info("Movie created", zap.String("movie_id", movie.ID.String()), zap.String("title", movie.Title))

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error) {
	if err := validate(s.log, "Update movie", req); err != nil {
		return nil, err
	}

	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		movie.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		movie.Description = *req.Description
	}
	if req.ReleaseDate != nil {
		releaseDate, err := time.Parse(dateLayout, *req.ReleaseDate)
		if err != nil {
			return nil, invalidInput("release_date: %v", err)
		}
		movie.ReleaseDate = releaseDate
	}
	if req.Genres != nil {
		movie.Genres = req.Genres
	}
	if req.DurationInMinutes != nil {
		movie.DurationInMinutes = *req.DurationInMinutes
	}
	if req.PosterURL != nil {
		movie.PosterURL = req.PosterURL
	}
	if req.TrailerURL != nil {
		movie.TrailerURL = req.TrailerURL
	}
	movie.UpdatedAt = s.now()

	if err := s.repo.Movie.Update(ctx, movie); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		s.log.Error("Failed to update movie", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("update movie: %w", err)
	}

	s.log.Info("Movie updated", zap.String("movie_id", movieID))

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) DeleteMovie(ctx context.Context, movieID string) error {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return ErrMovieNotFound
	}

	err = s.repo.Movie.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrMovieNotFound
	case errors.Is(err, repository.ErrInUse):
		return fmt.Errorf("%w: movie has showtimes", ErrInUse)
	case err != nil:
		return fmt.Errorf("delete movie: %w", err)
	}

	return nil
}

func (s *movieService) SeedMovies(ctx context.Context) (int, error) {
	total, err := s.repo.Movie.CountAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	if total > 0 {
		s.log.Debug("Catalog not empty, skipping seed", zap.Int64("movies", total))
		return 0, nil
	}

	added := 0
	for _, seed := range defaultMovies() {
		if _, err := s.CreateMovie(ctx, seed); err != nil {
			return added, fmt.Errorf("seed movie %q: %w", seed.Title, err)
		}
		added++
	}

	s.log.Info("Seeded movie catalog", zap.Int("movies", added))
	return added, nil
}

func (s *movieService) findMovie(ctx context.Context, movieID string) (*entity.Movie, error) {
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
	return movie, nil
}
