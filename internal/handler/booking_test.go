package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

func newBookingServer(m *mockBookings) *echo.Echo {
	e := NewTestEcho()
	h := NewBookingHandler(m)
	g := e.Group("/bookings", withUser(7, model.RoleUser))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id/cancel", h.Cancel)
	g.PUT("/:id/payment", h.UpdatePayment)
	return e
}

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	return er
}

func TestBookingHandler_Create(t *testing.T) {
	m := new(mockBookings)
	e := NewTestEcho()
	h := NewBookingHandler(m)
	e.POST("/bookings", h.Create, withUser(7, model.RoleUser))

	in := service.CreateBookingInput{ShowID: 3, NumSeats: 2, TotalAmount: 20, SeatNumbers: []string{"A1", "A2"}}
	m.On("CreateBooking", mock.Anything, uint64(7), in).
		Return(&model.Booking{ID: 11, UserID: 7, ShowID: 3, NumSeats: 2, PaymentStatus: model.PaymentPending}, nil).Once()

	rec := doJSON(e, http.MethodPost, "/bookings", `{"show_id":3,"num_seats":2,"total_amount":20,"seat_numbers":["A1","A2"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint64(11), got.ID)
	assert.Equal(t, model.PaymentPending, got.PaymentStatus)
	m.AssertExpectations(t)
}

func TestBookingHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantSeats  []string
	}{
		{"show missing", service.ErrShowNotFound, http.StatusNotFound, "show not found", nil},
		{"past show", service.ErrShowInPast, http.StatusBadRequest, "cannot book for past shows", nil},
		{"no capacity", service.ErrInsufficientSeats, http.StatusBadRequest, "not enough seats available", nil},
		{
			"seats locked",
			&service.SeatConflictError{Kind: service.ErrSeatsLocked, Seats: []string{"A2"}},
			http.StatusBadRequest, "some seats are already locked by another user", []string{"A2"},
		},
		{"transient", fmt.Errorf("create booking: %w", repository.ErrTransientConflict), http.StatusConflict, "resource busy, please retry", nil},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockBookings)
			e := NewTestEcho()
			e.POST("/bookings", NewBookingHandler(m).Create, withUser(7, model.RoleUser))
			m.On("CreateBooking", mock.Anything, uint64(7), mock.Anything).Return(nil, tt.err).Once()

			rec := doJSON(e, http.MethodPost, "/bookings", `{"show_id":3,"num_seats":1,"total_amount":10,"seat_numbers":["A2"]}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			er := decodeError(t, rec.Body.Bytes())
			assert.Equal(t, tt.wantMsg, er.Error)
			assert.Equal(t, tt.wantSeats, er.Seats)
			if tt.wantStatus == http.StatusConflict {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestBookingHandler_CreateValidation(t *testing.T) {
	m := new(mockBookings)
	e := NewTestEcho()
	e.POST("/bookings", NewBookingHandler(m).Create, withUser(7, model.RoleUser))

	for _, body := range []string{
		`{"num_seats":1}`,
		`{"show_id":3,"num_seats":0}`,
		`{"show_id":3,"num_seats":1,"total_amount":-5}`,
		`not json`,
	} {
		rec := doJSON(e, http.MethodPost, "/bookings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	m.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_RequiresUser(t *testing.T) {
	m := new(mockBookings)
	e := NewTestEcho()
	e.GET("/bookings", NewBookingHandler(m).List)

	rec := doJSON(e, http.MethodGet, "/bookings", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingHandler_ListAndGet(t *testing.T) {
	m := new(mockBookings)
	e := newBookingServer(m)

	m.On("ListBookings", mock.Anything, uint64(7), 5, 10).Return([]model.Booking{{ID: 1}, {ID: 2}}, nil).Once()
	m.On("GetBooking", mock.Anything, uint64(7), uint64(2)).Return(&model.Booking{ID: 2, UserID: 7}, nil).Once()
	m.On("GetBooking", mock.Anything, uint64(7), uint64(9)).Return(nil, service.ErrBookingNotFound).Once()

	rec := doJSON(e, http.MethodGet, "/bookings?skip=5&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = doJSON(e, http.MethodGet, "/bookings/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/bookings/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "booking not found", decodeError(t, rec.Body.Bytes()).Error)

	rec = doJSON(e, http.MethodGet, "/bookings?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	m.AssertExpectations(t)
}

func TestBookingHandler_CancelAndPay(t *testing.T) {
	m := new(mockBookings)
	e := newBookingServer(m)

	m.On("CancelBooking", mock.Anything, uint64(7), uint64(4)).Return(nil).Once()
	m.On("CancelBooking", mock.Anything, uint64(7), uint64(5)).Return(service.ErrShowStarted).Once()
	m.On("UpdatePaymentStatus", mock.Anything, uint64(7), uint64(4), "pay_123").
		Return(&model.Booking{ID: 4, PaymentStatus: model.PaymentCompleted}, nil).Once()
	m.On("UpdatePaymentStatus", mock.Anything, uint64(7), uint64(4), "").
		Return(nil, service.ErrPaymentIDMissing).Once()

	rec := doJSON(e, http.MethodPut, "/bookings/4/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Booking cancelled successfully"}`, rec.Body.String())

	rec = doJSON(e, http.MethodPut, "/bookings/5/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cannot cancel booking for past shows", decodeError(t, rec.Body.Bytes()).Error)

	rec = doJSON(e, http.MethodPut, "/bookings/4/payment?payment_id=pay_123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Payment status updated successfully"}`, rec.Body.String())

	rec = doJSON(e, http.MethodPut, "/bookings/4/payment", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPut, "/bookings/0/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	m.AssertExpectations(t)
}
