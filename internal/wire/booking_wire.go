package wire

import (
	"movie-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, g guards) {
	// ==================== PROTECTED ROUTES ====================
	// Every booking route acts on the caller's own bookings.
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/mybookings", bookingHandler.GetMyBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Delete("/{id}", bookingHandler.CancelBooking)
	})
}
