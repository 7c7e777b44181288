package response

import (
	"time"

	"movie-booking/internal/data/entity"
)

type MovieResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ReleaseDate       string    `json:"release_date"`
	Genres            []string  `json:"genres"`
	DurationInMinutes int       `json:"duration_in_minutes"`
	PosterURL         *string   `json:"poster_url,omitempty"`
	TrailerURL        *string   `json:"trailer_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type MovieDetailResponse struct {
	MovieResponse
	Showtimes []ShowtimeResponse `json:"showtimes"`
}

// MovieSummary is the movie as embedded in showtime and booking responses.
type MovieSummary struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	DurationInMinutes int     `json:"duration_in_minutes"`
	PosterURL         *string `json:"poster_url,omitempty"`
}

// Helper converters
func MovieToResponse(movie *entity.Movie) MovieResponse {
	genres := movie.Genres
	if genres == nil {
		genres = []string{}
	}

	return MovieResponse{
		ID:                movie.ID.String(),
		Title:             movie.Title,
		Description:       movie.Description,
		ReleaseDate:       movie.ReleaseDate.Format("2006-01-02"),
		Genres:            genres,
		DurationInMinutes: movie.DurationInMinutes,
		PosterURL:         movie.PosterURL,
		TrailerURL:        movie.TrailerURL,
		CreatedAt:         movie.CreatedAt,
		UpdatedAt:         movie.UpdatedAt,
	}
}

func MovieToSummary(movie *entity.Movie) *MovieSummary {
	if movie == nil {
		return nil
	}
	return &MovieSummary{
		ID:                movie.ID.String(),
		Title:             movie.Title,
		DurationInMinutes: movie.DurationInMinutes,
		PosterURL:         movie.PosterURL,
	}
}
