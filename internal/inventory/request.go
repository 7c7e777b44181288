package inventory

import (
	"fmt"
	"strings"
)

// Request asks for either Count seats picked in seating order, or the exact
// SeatNumbers. When both are set they must agree.
type Request struct {
	Count       int
	SeatNumbers []string
}

// Normalize validates the request and returns it with seat numbers trimmed,
// upper-cased and Count filled in.
func (r Request) Normalize() (Request, error) {
	if r.Count < 0 {
		return Request{}, fmt.Errorf("%w: seat count must be positive", ErrInvalidRequest)
	}
	if len(r.SeatNumbers) == 0 {
		if r.Count == 0 {
			return Request{}, fmt.Errorf("%w: request at least one seat", ErrInvalidRequest)
		}
		return Request{Count: r.Count}, nil
	}

	seats, err := NormalizeSeatNumbers(r.SeatNumbers)
	if err != nil {
		return Request{}, err
	}
	if r.Count != 0 && r.Count != len(seats) {
		return Request{}, fmt.Errorf("%w: seat count %d does not match %d seat numbers", ErrInvalidRequest, r.Count, len(seats))
	}
	return Request{Count: len(seats), SeatNumbers: seats}, nil
}

// NormalizeSeatNumbers trims and upper-cases seat numbers, rejecting blanks
// and duplicates.
func NormalizeSeatNumbers(numbers []string) ([]string, error) {
	seen := make(map[string]bool, len(numbers))
	out := make([]string, 0, len(numbers))
	for _, raw := range numbers {
		number := strings.ToUpper(strings.TrimSpace(raw))
		if number == "" {
			return nil, fmt.Errorf("%w: empty seat number", ErrInvalidRequest)
		}
		if seen[number] {
			return nil, fmt.Errorf("%w: seat %s requested twice", ErrInvalidRequest, number)
		}
		seen[number] = true
		out = append(out, number)
	}
	return out, nil
}
