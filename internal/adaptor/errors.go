package adaptor

import (
	"errors"
	"net/http"

	"movie-booking/internal/inventory"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"go.uber.org/zap"
)

// writeServiceError maps service errors to HTTP responses. Unknown errors are
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, operation string, err error) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, inventory.ErrInvalidRequest),
		errors.Is(err, inventory.ErrUnknownSeat):
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, utils.ErrUnauthenticated),
		errors.Is(err, usecase.ErrInvalidCredentials):
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrShowtimeNotFound),
		errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrMovieNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, inventory.ErrInsufficientInventory),
		errors.Is(err, inventory.ErrSeatAlreadyBooked),
		errors.Is(err, usecase.ErrAlreadyExists),
		errors.Is(err, usecase.ErrInUse):
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, inventory.ErrConflict):
		log.Warn(operation+" gave up after concurrent updates", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "The showtime is busy, please try again")

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
