package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Every error returned by this package that a client can
// act on wraps exactly one of these, so handlers classify with
// errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrShowNotFound    = fmt.Errorf("show not found: %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking not found: %w", ErrNotFound)
	ErrMovieNotFound   = fmt.Errorf("movie not found: %w", ErrNotFound)
	ErrTheaterNotFound = fmt.Errorf("theater not found: %w", ErrNotFound)

	ErrShowInPast        = fmt.Errorf("cannot book for past shows: %w", ErrInvalidState)
	ErrShowStarted       = fmt.Errorf("cannot cancel booking for past shows: %w", ErrInvalidState)
	ErrShowTimeNotFuture = fmt.Errorf("show time must be in the future: %w", ErrInvalidState)
	ErrInsufficientSeats = fmt.Errorf("not enough seats available: %w", ErrInvalidState)

	ErrSeatsLocked     = fmt.Errorf("some seats are already locked by another user: %w", ErrConflict)
	ErrSeatsBooked     = fmt.Errorf("some seats are already booked: %w", ErrConflict)
	ErrShowOverlap     = fmt.Errorf("show time overlaps with existing show: %w", ErrConflict)
	ErrShowHasBookings = fmt.Errorf("cannot delete show with existing bookings: %w", ErrConflict)
	ErrInUse           = fmt.Errorf("record is still referenced: %w", ErrConflict)

	ErrNoSeats          = fmt.Errorf("at least one seat number is required: %w", ErrInvalidInput)
	ErrPaymentIDMissing = fmt.Errorf("payment_id is required: %w", ErrInvalidInput)
	ErrBadSeatCount     = fmt.Errorf("num_seats must be positive: %w", ErrInvalidInput)
	ErrBadCapacity      = fmt.Errorf("seat capacity must be positive: %w", ErrInvalidInput)
)

// SeatConflictError reports which requested seats clashed.  It unwraps
// to ErrSeatsLocked or ErrSeatsBooked.
type SeatConflictError struct {
	Kind  error
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Seats)
}

func (e *SeatConflictError) Unwrap() error { return e.Kind }
