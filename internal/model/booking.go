package model

import "time"

// Payment statuses of a booking.  Cancellation deletes the row, so
// there is no terminal failed/cancelled status.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Booking records a user's reservation of specific seats for a show.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner of the booking.
//  ShowID        – show being booked.
//  NumSeats      – seat count charged against the show counter.
//  TotalAmount   – amount the client declared for the booking.
//  BookingTime   – creation timestamp (UTC).
//  PaymentStatus – pending or completed.
//  PaymentID     – external payment reference (nil until paid).
//  SeatNumbers   – seat labels covered by the booking.
type Booking struct {
	ID            uint64     `db:"id" json:"id"`                         // bookings.id
	UserID        uint64     `db:"user_id" json:"user_id"`               // bookings.user_id
	ShowID        uint64     `db:"show_id" json:"show_id"`               // bookings.show_id
	NumSeats      int        `db:"num_seats" json:"num_seats"`           // bookings.num_seats
	TotalAmount   float64    `db:"total_amount" json:"total_amount"`     // bookings.total_amount
	BookingTime   time.Time  `db:"booking_time" json:"booking_time"`     // bookings.booking_time
	PaymentStatus string     `db:"payment_status" json:"payment_status"` // bookings.payment_status
	PaymentID     *string    `db:"payment_id" json:"payment_id"`         // bookings.payment_id (nullable)
	SeatNumbers   SeatLabels `db:"seat_numbers" json:"seat_numbers"`     // bookings.seat_numbers (JSON)
}

// IsCompleted reports whether payment was confirmed.
func (b *Booking) IsCompleted() bool { return b.PaymentStatus == PaymentCompleted }
