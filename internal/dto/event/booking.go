// Package event holds the messages published on the booking queues.
package event

import (
	"time"

	"movie-booking/internal/data/entity"
)

type BookingEvent struct {
	Status      entity.BookingStatus `json:"status"`
	BookingID   string               `json:"booking_id"`
	OrderID     string               `json:"order_id"`
	UserID      string               `json:"user_id"`
	ShowtimeID  string               `json:"showtime_id"`
	SeatNumbers []string             `json:"seat_numbers"`
	TotalPrice  float64              `json:"total_price"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

func NewBookingEvent(b *entity.Booking, status entity.BookingStatus, at time.Time) BookingEvent {
	return BookingEvent{
		Status:      status,
		BookingID:   b.ID.String(),
		OrderID:     b.OrderID,
		UserID:      b.UserID.String(),
		ShowtimeID:  b.ShowtimeID.String(),
		SeatNumbers: b.SeatNumbers,
		TotalPrice:  b.TotalPrice,
		OccurredAt:  at.UTC(),
	}
}
