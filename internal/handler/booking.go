package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// BookingHandler serves /bookings.  Every route requires JWTAuth; all
// lookups are scoped to the caller.
type BookingHandler struct {
	bookings BookingManager
}

func NewBookingHandler(bookings BookingManager) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	ShowID      uint64   `json:"show_id" validate:"required"`
	NumSeats    int      `json:"num_seats" validate:"required,gt=0"`
	TotalAmount float64  `json:"total_amount" validate:"gte=0"`
	SeatNumbers []string `json:"seat_numbers" validate:"dive,required"`
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := h.bookings.CreateBooking(c.Request().Context(), userID, service.CreateBookingInput{
		ShowID:      req.ShowID,
		NumSeats:    req.NumSeats,
		TotalAmount: req.TotalAmount,
		SeatNumbers: req.SeatNumbers,
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// List handles GET /bookings?skip=&limit=.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.bookings.ListBookings(c.Request().Context(), userID, skip, limit)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.bookings.GetBooking(c.Request().Context(), userID, id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles PUT /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.bookings.CancelBooking(c.Request().Context(), userID, id); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Booking cancelled successfully"})
}

// UpdatePayment handles PUT /bookings/:id/payment?payment_id=.
func (h *BookingHandler) UpdatePayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.bookings.UpdatePaymentStatus(c.Request().Context(), userID, id, c.QueryParam("payment_id")); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Payment status updated successfully"})
}
