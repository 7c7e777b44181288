package request

// CreateBookingRequest asks for seat_count seats picked in seating order, or
// the exact seat_numbers. Both may be sent when they agree.
type CreateBookingRequest struct {
	ShowtimeID  string   `json:"showtime_id" validate:"required,uuid4"`
	SeatCount   int      `json:"seat_count" validate:"required_without=SeatNumbers,omitempty,min=1,max=50"`
	SeatNumbers []string `json:"seat_numbers" validate:"required_without=SeatCount,omitempty,min=1,max=50,dive,required,max=10"`
}
