package response

import (
	"time"

	"movie-booking/internal/data/entity"
)

type BookingResponse struct {
	ID           string               `json:"id"`
	OrderID      string               `json:"order_id"`
	UserID       string               `json:"user_id"`
	ShowtimeID   string               `json:"showtime_id"`
	SeatCount    int                  `json:"seat_count"`
	SeatNumbers  []string             `json:"seat_numbers"`
	PricePerSeat float64              `json:"price_per_seat"`
	TotalPrice   float64              `json:"total_price"`
	Status       entity.BookingStatus `json:"status"`
	Showtime     *ShowtimeResponse    `json:"showtime,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// BookingToResponse joins the booking with its showtime and movie. Either may
// be nil when it could not be loaded.
func BookingToResponse(booking *entity.Booking, showtime *entity.Showtime, movie *entity.Movie) BookingResponse {
	resp := BookingResponse{
		ID:           booking.ID.String(),
		OrderID:      booking.OrderID,
		UserID:       booking.UserID.String(),
		ShowtimeID:   booking.ShowtimeID.String(),
		SeatCount:    booking.SeatCount,
		SeatNumbers:  booking.SeatNumbers,
		PricePerSeat: booking.PricePerSeat,
		TotalPrice:   booking.TotalPrice,
		Status:       booking.Status,
		CreatedAt:    booking.CreatedAt,
	}

	if showtime != nil {
		st := ShowtimeToResponse(showtime, movie)
		resp.Showtime = &st
	}

	return resp
}
