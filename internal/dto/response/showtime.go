package response

import (
	"time"

	"movie-booking/internal/data/entity"
)

type ShowtimeResponse struct {
	ID             string        `json:"id"`
	MovieID        string        `json:"movie_id"`
	Movie          *MovieSummary `json:"movie,omitempty"`
	ShowDate       string        `json:"show_date"`
	ShowTime       string        `json:"show_time"`
	Theater        string        `json:"theater"`
	TotalSeats     int           `json:"total_seats"`
	AvailableSeats int           `json:"available_seats"`
	Price          float64       `json:"price"`
	CreatedAt      time.Time     `json:"created_at"`
}

type SeatResponse struct {
	SeatNumber  string `json:"seat_number"`
	SeatRow     string `json:"seat_row"`
	SeatColumn  int    `json:"seat_column"`
	IsAvailable bool   `json:"is_available"`
}

type SeatMapResponse struct {
	ShowtimeID     string         `json:"showtime_id"`
	TotalSeats     int            `json:"total_seats"`
	AvailableSeats int            `json:"available_seats"`
	Seats          []SeatResponse `json:"seats"`
}

// Helper converters
func ShowtimeToResponse(showtime *entity.Showtime, movie *entity.Movie) ShowtimeResponse {
	return ShowtimeResponse{
		ID:             showtime.ID.String(),
		MovieID:        showtime.MovieID.String(),
		Movie:          MovieToSummary(movie),
		ShowDate:       showtime.ShowDate.Format("2006-01-02"),
		ShowTime:       showtime.ShowTime,
		Theater:        showtime.Theater,
		TotalSeats:     showtime.TotalSeats,
		AvailableSeats: showtime.AvailableSeats,
		Price:          showtime.Price,
		CreatedAt:      showtime.CreatedAt,
	}
}

func SeatMapToResponse(showtime *entity.Showtime) SeatMapResponse {
	seats := make([]SeatResponse, len(showtime.Seats))
	for i, seat := range showtime.Seats {
		seats[i] = SeatResponse{
			SeatNumber:  seat.SeatNumber,
			SeatRow:     seat.SeatRow,
			SeatColumn:  seat.SeatColumn,
			IsAvailable: !seat.IsBooked,
		}
	}

	return SeatMapResponse{
		ShowtimeID:     showtime.ID.String(),
		TotalSeats:     showtime.TotalSeats,
		AvailableSeats: showtime.CountAvailable(),
		Seats:          seats,
	}
}
