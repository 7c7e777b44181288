package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/internal/inventory"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) error {
	args := m.Called(ctx, userID, bookingID)
	return args.Error(0)
}

func (m *MockBookingService) ListBookingsForUser(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PaginatedResponse[response.BookingResponse]), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

// asUser injects the identity the auth middleware would set.
func asUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := utils.SetUserContext(r.Context(), utils.Identity{UserID: userID, Role: "user"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bookingRouter(h *BookingHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	if userID != uuid.Nil {
		r.Use(asUser(userID))
	}
	r.Post("/api/bookings", h.CreateBooking)
	r.Get("/api/bookings/mybookings", h.GetMyBookings)
	r.Get("/api/bookings/{id}", h.GetBooking)
	r.Delete("/api/bookings/{id}", h.CancelBooking)
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestBookingHandler_Create(t *testing.T) {
	userID := uuid.New()
	showtimeID := uuid.NewString()

	t.Run("created", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CreateBooking", mock.Anything, userID, &request.CreateBookingRequest{ShowtimeID: showtimeID, SeatCount: 3}).
			Return(&response.BookingResponse{OrderID: "BOOK-1", TotalPrice: 600}, nil)

		body := fmt.Sprintf(`{"showtime_id":%q,"seat_count":3}`, showtimeID)
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		bookingRouter(NewBookingHandler(svc, zap.NewNop()), userID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Status)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "BOOK-1", data["order_id"])
		assert.Equal(t, 600.0, data["total_price"])
		svc.AssertExpectations(t)
	})

	t.Run("insufficient inventory is 409 with the count", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CreateBooking", mock.Anything, userID, mock.Anything).
			Return(nil, &inventory.InsufficientInventoryError{Requested: 8, Available: 7})

		body := fmt.Sprintf(`{"showtime_id":%q,"seat_count":8}`, showtimeID)
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		bookingRouter(NewBookingHandler(svc, zap.NewNop()), userID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "only 7 seats left", decodeResponse(t, rec).Message)
	})

	t.Run("validation fields are returned", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CreateBooking", mock.Anything, userID, mock.Anything).
			Return(nil, &usecase.ValidationError{Fields: map[string]string{"showtime_id": "This field is required"}})

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		bookingRouter(NewBookingHandler(svc, zap.NewNop()), userID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, map[string]any{"showtime_id": "This field is required"}, resp.Errors)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockBookingService)
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{"seat_count":`))
		rec := httptest.NewRecorder()
		bookingRouter(NewBookingHandler(svc, zap.NewNop()), userID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no identity", func(t *testing.T) {
		svc := new(MockBookingService)
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		bookingRouter(NewBookingHandler(svc, zap.NewNop()), uuid.Nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBookingHandler_Cancel(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.NewString()

	svc := new(MockBookingService)
	svc.On("CancelBooking", mock.Anything, userID, bookingID).Return(nil).Once()
	svc.On("CancelBooking", mock.Anything, userID, bookingID).Return(usecase.ErrBookingNotFound).Once()
	router := bookingRouter(NewBookingHandler(svc, zap.NewNop()), userID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/bookings/"+bookingID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/bookings/"+bookingID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.AssertExpectations(t)
}

func TestBookingHandler_MyBookings(t *testing.T) {
	userID := uuid.New()
	svc := new(MockBookingService)
	svc.On("ListBookingsForUser", mock.Anything, userID, &request.PaginatedRequest{Page: 2, PerPage: 5}).
		Return(response.NewPaginatedResponse([]response.BookingResponse{{OrderID: "BOOK-9"}}, 2, 5, 6), nil)

	rec := httptest.NewRecorder()
	bookingRouter(NewBookingHandler(svc, zap.NewNop()), userID).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/mybookings?page=2&per_page=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]any)
	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, 2.0, pagination["total_pages"])
	svc.AssertExpectations(t)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", fmt.Errorf("%w: bad", usecase.ErrInvalidInput), http.StatusBadRequest},
		{"unknown seat", fmt.Errorf("%w: Z9", inventory.ErrUnknownSeat), http.StatusBadRequest},
		{"bad credentials", usecase.ErrInvalidCredentials, http.StatusUnauthorized},
		{"showtime missing", fmt.Errorf("showtime x: %w", usecase.ErrShowtimeNotFound), http.StatusNotFound},
		{"movie missing", usecase.ErrMovieNotFound, http.StatusNotFound},
		{"seat taken", fmt.Errorf("%w: A1", inventory.ErrSeatAlreadyBooked), http.StatusConflict},
		{"duplicate", usecase.ErrAlreadyExists, http.StatusConflict},
		{"in use", usecase.ErrInUse, http.StatusConflict},
		{"busy", inventory.ErrConflict, http.StatusServiceUnavailable},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, zap.NewNop(), "test", tt.err)
			assert.Equal(t, tt.code, rec.Code)
		})
	}

	t.Run("internal errors are not leaked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, zap.NewNop(), "test", errors.New("pq: password authentication failed"))
		assert.NotContains(t, rec.Body.String(), "password")
	})
}
