// Package queue defines the booking events exchanged over RabbitMQ and
// the publisher and consumer that move them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Event types carried in BookingEvent.Type.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingPaid      = "booking.paid"
)

// BookingEvent is published after a booking mutation commits.  It
// contains enough information for downstream consumers to log, notify
// or trigger analytics without querying the primary database.
type BookingEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	BookingID   uint64    `json:"booking_id"`
	UserID      uint64    `json:"user_id"`
	ShowID      uint64    `json:"show_id"`
	Seats       []string  `json:"seats"`
	NumSeats    int       `json:"num_seats"`
	TotalAmount float64   `json:"total_amount"`
	PaymentID   string    `json:"payment_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewBookingEvent snapshots b into an event of the given type.
func NewBookingEvent(eventType string, b *model.Booking, at time.Time) BookingEvent {
	ev := BookingEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		BookingID:   b.ID,
		UserID:      b.UserID,
		ShowID:      b.ShowID,
		Seats:       append([]string(nil), b.SeatNumbers...),
		NumSeats:    b.NumSeats,
		TotalAmount: b.TotalAmount,
		OccurredAt:  at.UTC(),
	}
	if b.PaymentID != nil {
		ev.PaymentID = *b.PaymentID
	}
	return ev
}
