package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

// A booking only exists while confirmed; cancelling removes the row.
// BookingStatusCancelled labels the cancellation event.
const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	BaseSimple
	OrderID      string        `db:"order_id"`
	UserID       uuid.UUID     `db:"user_id"`
	ShowtimeID   uuid.UUID     `db:"showtime_id"`
	SeatCount    int           `db:"seat_count"`
	SeatNumbers  []string      `db:"seat_numbers"`
	PricePerSeat float64       `db:"price_per_seat"`
	TotalPrice   float64       `db:"total_price"`
	Status       BookingStatus `db:"status"`
}
