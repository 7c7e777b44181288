package wire

import (
	"movie-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireShowtime(r chi.Router, showtimeHandler *adaptor.ShowtimeHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/showtimes", func(r chi.Router) {
		r.Get("/", showtimeHandler.GetShowtimes)
		r.Get("/movie/{movieId}", showtimeHandler.GetShowtimesByMovie)
		r.Get("/{id}", showtimeHandler.GetShowtimeByID)
		// Per-seat availability for the seat picker
		r.Get("/{id}/seats", showtimeHandler.GetSeatMap)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/showtimes", func(r chi.Router) {
		r.Use(g.auth)
		r.Use(g.admin)

		r.Post("/", showtimeHandler.CreateShowtime)
		r.Put("/{id}", showtimeHandler.UpdateShowtime)
		r.Delete("/{id}", showtimeHandler.DeleteShowtime)
	})
}
