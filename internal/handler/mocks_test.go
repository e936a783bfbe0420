package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// withUser stands in for JWTAuth.
func withUser(id uint64, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", id)
			c.Set("role", role)
			return next(c)
		}
	}
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type mockSeatLocker struct{ mock.Mock }

func (m *mockSeatLocker) LockSeats(ctx context.Context, showID uint64, seats []string) (*service.LockResult, error) {
	args := m.Called(ctx, showID, seats)
	res, _ := args.Get(0).(*service.LockResult)
	return res, args.Error(1)
}

func (m *mockSeatLocker) UnlockSeats(ctx context.Context, showID uint64, seats []string) error {
	return m.Called(ctx, showID, seats).Error(0)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) CreateBooking(ctx context.Context, userID uint64, in service.CreateBookingInput) (*model.Booking, error) {
	args := m.Called(ctx, userID, in)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) CancelBooking(ctx context.Context, userID, bookingID uint64) error {
	return m.Called(ctx, userID, bookingID).Error(0)
}

func (m *mockBookings) UpdatePaymentStatus(ctx context.Context, userID, bookingID uint64, paymentID string) (*model.Booking, error) {
	args := m.Called(ctx, userID, bookingID, paymentID)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) ListBookings(ctx context.Context, userID uint64, skip, limit int) ([]model.Booking, error) {
	args := m.Called(ctx, userID, skip, limit)
	out, _ := args.Get(0).([]model.Booking)
	return out, args.Error(1)
}

func (m *mockBookings) GetBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) ListMovies(ctx context.Context, skip, limit int) ([]model.Movie, error) {
	args := m.Called(ctx, skip, limit)
	out, _ := args.Get(0).([]model.Movie)
	return out, args.Error(1)
}

func (m *mockCatalog) GetMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.Movie)
	return out, args.Error(1)
}

func (m *mockCatalog) CreateMovie(ctx context.Context, mv *model.Movie) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *mockCatalog) UpdateMovie(ctx context.Context, id uint64, u model.MovieUpdate) (*model.Movie, error) {
	args := m.Called(ctx, id, u)
	out, _ := args.Get(0).(*model.Movie)
	return out, args.Error(1)
}

func (m *mockCatalog) DeleteMovie(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) ListTheaters(ctx context.Context, skip, limit int) ([]model.Theater, error) {
	args := m.Called(ctx, skip, limit)
	out, _ := args.Get(0).([]model.Theater)
	return out, args.Error(1)
}

func (m *mockCatalog) GetTheater(ctx context.Context, id uint64) (*model.Theater, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.Theater)
	return out, args.Error(1)
}

func (m *mockCatalog) CreateTheater(ctx context.Context, t *model.Theater) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockCatalog) UpdateTheater(ctx context.Context, id uint64, u model.TheaterUpdate) (*model.Theater, error) {
	args := m.Called(ctx, id, u)
	out, _ := args.Get(0).(*model.Theater)
	return out, args.Error(1)
}

func (m *mockCatalog) DeleteTheater(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) ListShows(ctx context.Context, skip, limit int) ([]model.Show, error) {
	args := m.Called(ctx, skip, limit)
	out, _ := args.Get(0).([]model.Show)
	return out, args.Error(1)
}

func (m *mockCatalog) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.Show)
	return out, args.Error(1)
}

func (m *mockCatalog) ListShowsByMovie(ctx context.Context, movieID uint64) ([]model.Show, error) {
	args := m.Called(ctx, movieID)
	out, _ := args.Get(0).([]model.Show)
	return out, args.Error(1)
}

func (m *mockCatalog) ListShowsByTheater(ctx context.Context, theaterID uint64) ([]model.Show, error) {
	args := m.Called(ctx, theaterID)
	out, _ := args.Get(0).([]model.Show)
	return out, args.Error(1)
}

func (m *mockCatalog) CreateShow(ctx context.Context, in model.NewShow) (*model.Show, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*model.Show)
	return out, args.Error(1)
}

func (m *mockCatalog) UpdateShow(ctx context.Context, id uint64, u model.ShowUpdate) (*model.Show, error) {
	args := m.Called(ctx, id, u)
	out, _ := args.Get(0).(*model.Show)
	return out, args.Error(1)
}

func (m *mockCatalog) DeleteShow(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, u *model.User, password string, cost int) error {
	return m.Called(ctx, u, password, cost).Error(0)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return m.Called(ctx, userID, tokenHash, exp).Error(0)
}

func (m *mockTokens) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	args := m.Called(ctx, tokenHash, now)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}
