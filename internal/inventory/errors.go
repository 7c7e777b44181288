package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest        = errors.New("invalid seat request")
	ErrShowtimeNotFound      = errors.New("showtime not found")
	ErrUnknownSeat           = errors.New("unknown seat")
	ErrSeatAlreadyBooked     = errors.New("seat already booked")
	ErrInsufficientInventory = errors.New("not enough seats available")
	// ErrConflict means the showtime changed underneath the operation. The
	// caller may retry.
	ErrConflict = errors.New("showtime inventory changed concurrently")
)

// InsufficientInventoryError reports how many seats were asked for and how
// many were left. It matches ErrInsufficientInventory.
type InsufficientInventoryError struct {
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	if e.Available == 1 {
		return "only 1 seat left"
	}
	return fmt.Sprintf("only %d seats left", e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
