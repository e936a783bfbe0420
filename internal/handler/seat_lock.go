package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SeatLockHandler serves the lock and unlock endpoints.  They carry no
// user identity and are protected by rate limiting only.
type SeatLockHandler struct {
	locks SeatLocker
}

func NewSeatLockHandler(locks SeatLocker) *SeatLockHandler {
	return &SeatLockHandler{locks: locks}
}

type seatLockRequest struct {
	SeatNumbers []string `json:"seat_numbers" validate:"required,min=1,dive,required"`
}

// LockSeats handles POST /shows/:id/lock-seats.
func (h *SeatLockHandler) LockSeats(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req seatLockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.locks.LockSeats(c.Request().Context(), showID, req.SeatNumbers)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// UnlockSeats handles POST /shows/:id/unlock-seats.
func (h *SeatLockHandler) UnlockSeats(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req seatLockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.locks.UnlockSeats(c.Request().Context(), showID, req.SeatNumbers); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Seats unlocked successfully"})
}
