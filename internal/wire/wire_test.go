package wire

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"movie-booking/internal/data/memory"
	"movie-booking/internal/inventory"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClient struct {
	t      *testing.T
	router http.Handler
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	log := zap.NewNop()

	config := &utils.Config{
		App:     utils.AppConfig{CORSOrigins: []string{"*"}},
		JWT:     utils.JWTConfig{Secret: "wire-secret", ExpiryHours: 1},
		Booking: utils.BookingConfig{MaxAttempts: 3},
		Admin:   utils.AdminConfig{Email: "admin@example.com"},
	}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	repo := memory.NewRepository()
	tokens := utils.NewTokenManager(config.JWT)

	service := usecase.NewService(repo, config, usecase.Deps{
		Tokens:  tokens,
		Ledger:  inventory.NewLedger(repo.Showtime, repo.Tx, log, inventory.WithMetrics(m)),
		Metrics: m,
	}, log)

	return &testClient{t: t, router: Wiring(service, tokens, m, config, log).Router}
}

func (c *testClient) do(method, path, token string, body any) (int, utils.Response) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var resp utils.Response
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func (c *testClient) register(username, email string) string {
	c.t.Helper()
	code, resp := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": "secret123",
	})
	require.Equal(c.t, http.StatusCreated, code, resp.Message)
	return field(c.t, resp, "token").(string)
}

func field(t *testing.T, resp utils.Response, key string) any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data[key]
}

func TestBookingFlow(t *testing.T) {
	c := newTestClient(t)
	admin := c.register("admin", "admin@example.com")
	user := c.register("oh-dae-su", "daesu@example.com")

	code, _ := c.do(http.MethodPost, "/api/admin/movies", user, map[string]any{})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := c.do(http.MethodPost, "/api/admin/movies", admin, map[string]any{
		"title":               "Oldboy",
		"description":         "Imprisoned for fifteen years.",
		"release_date":        "2003-11-21",
		"genres":              []string{"Thriller"},
		"duration_in_minutes": 120,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	movieID := field(t, resp, "id").(string)

	code, resp = c.do(http.MethodPost, "/api/admin/showtimes", admin, map[string]any{
		"movie_id":    movieID,
		"show_date":   "2026-11-01",
		"show_time":   "20:00",
		"theater":     "Hall 1",
		"total_seats": 5,
		"price":       150,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	showtimeID := field(t, resp, "id").(string)

	code, resp = c.do(http.MethodPost, "/api/bookings", user, map[string]any{
		"showtime_id": showtimeID,
		"seat_count":  3,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	bookingID := field(t, resp, "id").(string)
	assert.Equal(t, 450.0, field(t, resp, "total_price"))

	code, resp = c.do(http.MethodPost, "/api/bookings", user, map[string]any{
		"showtime_id": showtimeID,
		"seat_count":  3,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "only 2 seats left", resp.Message)

	code, resp = c.do(http.MethodGet, "/api/showtimes/"+showtimeID+"/seats", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, field(t, resp, "available_seats"))

	code, resp = c.do(http.MethodGet, "/api/bookings/mybookings", user, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, field(t, resp, "data"), 1)

	code, _ = c.do(http.MethodDelete, "/api/bookings/"+bookingID, admin, nil)
	assert.Equal(t, http.StatusNotFound, code, "cancel is owner scoped")

	code, _ = c.do(http.MethodDelete, "/api/bookings/"+bookingID, user, nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = c.do(http.MethodGet, "/api/showtimes/"+showtimeID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5.0, field(t, resp, "available_seats"))

	code, _ = c.do(http.MethodGet, "/api/showtimes/movie/"+movieID, "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProtectedRoutes(t *testing.T) {
	c := newTestClient(t)

	code, _ := c.do(http.MethodGet, "/api/bookings/mybookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = c.do(http.MethodGet, "/api/user/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	user := c.register("geum-ja", "geumja@example.com")
	code, resp := c.do(http.MethodGet, "/api/user/profile", user, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "geumja@example.com", field(t, resp, "email"))

	code, _ = c.do(http.MethodGet, "/api/admin/users", user, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestHealthAndMetrics(t *testing.T) {
	c := newTestClient(t)

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	c.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
