package wire

import (
	"movie-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures user routes with role-based access control
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	// ==================== PROTECTED USER ROUTES ====================
	r.With(g.auth).Get("/api/user/profile", userHandler.GetProfile)

	// ==================== ADMIN ROUTES ====================
	r.With(g.auth, g.admin).Get("/api/admin/users", userHandler.GetAllUsers) // ?page=1&per_page=10
}
