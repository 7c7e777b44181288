package usecase

import (
	"errors"
	"fmt"

	"movie-booking/internal/inventory"
	"movie-booking/pkg/utils"

	"go.uber.org/zap"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInUse              = errors.New("still in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrShowtimeNotFound   = inventory.ErrShowtimeNotFound
)

// ValidationError carries the field -> message map of a rejected request.
// It matches ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func validate(log *zap.Logger, op string, req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		log.Warn(op+" validation failed", zap.Any("errors", errs))
		return &ValidationError{Fields: errs}
	}
	return nil
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
