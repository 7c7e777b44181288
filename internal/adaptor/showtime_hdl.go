package adaptor

import (
	"net/http"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShowtimeHandler struct {
	service usecase.ShowtimeService
	log     *zap.Logger
}

func NewShowtimeHandler(service usecase.ShowtimeService, log *zap.Logger) *ShowtimeHandler {
	return &ShowtimeHandler{
		service: service,
		log:     log.With(zap.String("handler", "showtime")),
	}
}

// GetShowtimes handles GET /api/showtimes
func (h *ShowtimeHandler) GetShowtimes(w http.ResponseWriter, r *http.Request) {
	showtimes, err := h.service.GetShowtimes(r.Context())
	if err != nil {
		writeServiceError(w, h.log, "get showtimes", err)
		return
	}

	utils.ResponseSuccess(w, "success", showtimes)
}

// GetShowtimeByID handles GET /api/showtimes/{id}
func (h *ShowtimeHandler) GetShowtimeByID(w http.ResponseWriter, r *http.Request) {
	showtime, err := h.service.GetShowtimeByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, "get showtime", err)
		return
	}

	utils.ResponseSuccess(w, "success", showtime)
}

// GetShowtimesByMovie handles GET /api/showtimes/movie/{movieId}
func (h *ShowtimeHandler) GetShowtimesByMovie(w http.ResponseWriter, r *http.Request) {
	showtimes, err := h.service.GetShowtimesByMovie(r.Context(), chi.URLParam(r, "movieId"))
	if err != nil {
		writeServiceError(w, h.log, "get showtimes by movie", err)
		return
	}

	utils.ResponseSuccess(w, "success", showtimes)
}

// GetSeatMap handles GET /api/showtimes/{id}/seats
func (h *ShowtimeHandler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	seats, err := h.service.GetSeatMap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, "get seat map", err)
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// CreateShowtime handles POST /api/admin/showtimes
func (h *ShowtimeHandler) CreateShowtime(w http.ResponseWriter, r *http.Request) {
	var req request.ShowtimeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	showtime, err := h.service.CreateShowtime(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, "create showtime", err)
		return
	}

	utils.ResponseCreated(w, "Showtime created", showtime)
}

// UpdateShowtime handles PUT /api/admin/showtimes/{id}
func (h *ShowtimeHandler) UpdateShowtime(w http.ResponseWriter, r *http.Request) {
	var req request.ShowtimeUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	showtime, err := h.service.UpdateShowtime(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, "update showtime", err)
		return
	}

	utils.ResponseSuccess(w, "Showtime updated", showtime)
}

// DeleteShowtime handles DELETE /api/admin/showtimes/{id}
func (h *ShowtimeHandler) DeleteShowtime(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShowtime(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, "delete showtime", err)
		return
	}

	utils.ResponseSuccess(w, "Showtime removed", nil)
}
