package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultSeatsPerRow = 10

// Showtime is one screening of a movie. Seats and AvailableSeats are owned by
// the inventory ledger; catalog updates never touch them.
type Showtime struct {
	Base
	MovieID        uuid.UUID `db:"movie_id"`
	ShowDate       time.Time `db:"show_date"`
	ShowTime       string    `db:"show_time"` // "19:30"
	Theater        string    `db:"theater"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
	Price          float64   `db:"price"`
	Version        int64     `db:"version"`

	// Seats is only populated by inventory reads, in seating order.
	Seats []ShowtimeSeat `db:"-"`
}

type ShowtimeSeat struct {
	SeatNumber string `db:"seat_number"` // A1, A2, B1, etc.
	SeatRow    string `db:"seat_row"`    // A, B, C, etc.
	SeatColumn int    `db:"seat_column"` // 1, 2, 3, etc.
	IsBooked   bool   `db:"is_booked"`
}

// NewSeatLayout lays out total seats in rows of perRow, labelled A1..A{perRow},
// B1.. and so on. Rows past Z continue as AA, AB, ...
func NewSeatLayout(total, perRow int) []ShowtimeSeat {
	if perRow < 1 {
		perRow = DefaultSeatsPerRow
	}

	seats := make([]ShowtimeSeat, 0, total)
	for i := 0; i < total; i++ {
		row := rowLabel(i / perRow)
		col := i%perRow + 1
		seats = append(seats, ShowtimeSeat{
			SeatNumber: fmt.Sprintf("%s%d", row, col),
			SeatRow:    row,
			SeatColumn: col,
		})
	}
	return seats
}

func rowLabel(n int) string {
	label := ""
	for n >= 0 {
		label = string(rune('A'+n%26)) + label
		n = n/26 - 1
	}
	return label
}

// Seat returns the seat with the given number, or nil.
func (s *Showtime) Seat(number string) *ShowtimeSeat {
	for i := range s.Seats {
		if s.Seats[i].SeatNumber == number {
			return &s.Seats[i]
		}
	}
	return nil
}

// CountAvailable derives the free seat count from the seat flags.
func (s *Showtime) CountAvailable() int {
	n := 0
	for _, seat := range s.Seats {
		if !seat.IsBooked {
			n++
		}
	}
	return n
}

// FreeSeats returns up to n unbooked seat numbers in seating order.
func (s *Showtime) FreeSeats(n int) []string {
	out := make([]string, 0, n)
	for _, seat := range s.Seats {
		if len(out) == n {
			break
		}
		if !seat.IsBooked {
			out = append(out, seat.SeatNumber)
		}
	}
	return out
}

// Clone deep-copies the showtime including its seats.
func (s *Showtime) Clone() *Showtime {
	c := *s
	if s.Seats != nil {
		c.Seats = make([]ShowtimeSeat, len(s.Seats))
		copy(c.Seats, s.Seats)
	}
	return &c
}
