package request

type ShowtimeRequest struct {
	MovieID     string  `json:"movie_id" validate:"required,uuid4"`
	ShowDate    string  `json:"show_date" validate:"required,datetime=2006-01-02"`
	ShowTime    string  `json:"show_time" validate:"required,datetime=15:04"`
	Theater     string  `json:"theater" validate:"required,min=1,max=100"`
	TotalSeats  int     `json:"total_seats" validate:"required,min=1,max=1000"`
	SeatsPerRow int     `json:"seats_per_row,omitempty" validate:"omitempty,min=1,max=50"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// ShowtimeUpdateRequest only changes schedule details and price. MovieID and
// TotalSeats are accepted so a change can be rejected explicitly.
type ShowtimeUpdateRequest struct {
	MovieID    *string  `json:"movie_id,omitempty" validate:"omitempty,uuid4"`
	ShowDate   *string  `json:"show_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ShowTime   *string  `json:"show_time,omitempty" validate:"omitempty,datetime=15:04"`
	Theater    *string  `json:"theater,omitempty" validate:"omitempty,min=1,max=100"`
	TotalSeats *int     `json:"total_seats,omitempty" validate:"omitempty,min=1"`
	Price      *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}
