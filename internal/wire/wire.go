package wire

import (
	"net/http"

	"movie-booking/internal/adaptor"
	"movie-booking/internal/data/entity"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/middleware"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface.
type App struct {
	Router *chi.Mux
}

// guards bundles the route middleware shared by the per-domain wiring.
type guards struct {
	auth  func(http.Handler) http.Handler
	admin func(http.Handler) http.Handler
}

// Wiring builds the handlers for service and mounts every route.
func Wiring(
	service *usecase.Service,
	tokens *utils.TokenManager,
	m *metrics.Metrics,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, tokens, m, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	tokens *utils.TokenManager,
	m *metrics.Metrics,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))
	if m != nil {
		r.Use(middleware.Metrics(m))
	}

	g := guards{
		auth:  middleware.Auth(tokens, logger),
		admin: middleware.RequireRole(string(entity.RoleAdmin), logger),
	}

	wireAuth(r, handler.Auth)
	wireUser(r, handler.User, g)
	wireMovie(r, handler.Movie, g)
	wireShowtime(r, handler.Showtime, g)
	wireBooking(r, handler.Booking, g)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
