package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

const publishTimeout = 5 * time.Second

// CreateBookingInput is the client's booking request.
type CreateBookingInput struct {
	ShowID      uint64
	NumSeats    int
	TotalAmount float64
	SeatNumbers []string
}

// BookingService owns the booking lifecycle: create (pending), pay
// (completed) and cancel (row removed).  Every mutation runs in one
// transaction that holds the show row lock, and the available seat
// counter moves together with the booking row.
type BookingService struct {
	tx       TxRunner
	shows    ShowStore
	bookings BookingStore
	ledger   *Ledger
	events   EventPublisher
	opts     options
}

func NewBookingService(tx TxRunner, shows ShowStore, bookings BookingStore, events EventPublisher, opts ...Option) *BookingService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &BookingService{
		tx:       tx,
		shows:    shows,
		bookings: bookings,
		ledger:   NewLedger(shows, bookings),
		events:   events,
		opts:     buildOptions(opts),
	}
}

// CreateBooking reserves in.NumSeats on the show for userID.  No prior
// seat lock is required and existing locks are left untouched.
func (s *BookingService) CreateBooking(ctx context.Context, userID uint64, in CreateBookingInput) (*model.Booking, error) {
	if in.NumSeats <= 0 {
		s.observe("create", ErrBadSeatCount)
		return nil, ErrBadSeatCount
	}
	seats := model.NormalizeSeats(in.SeatNumbers)

	var booking *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		show, err := s.ledger.LoadForUpdate(ctx, tx, in.ShowID)
		if err != nil {
			return err
		}
		now := s.opts.now()
		if show.HasStarted(now) {
			return ErrShowInPast
		}
		if s.ledger.SeatsAvailable(show) < in.NumSeats {
			return ErrInsufficientSeats
		}
		if err := s.shows.AdjustAvailableSeatsTx(ctx, tx, show.ID, -in.NumSeats); err != nil {
			return fmt.Errorf("reserve seats: %w", err)
		}
		b := &model.Booking{
			UserID:        userID,
			ShowID:        show.ID,
			NumSeats:      in.NumSeats,
			TotalAmount:   in.TotalAmount,
			BookingTime:   now,
			PaymentStatus: model.PaymentPending,
			SeatNumbers:   seats,
		}
		if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		booking = b
		return nil
	})
	s.observe("create", err)
	if err != nil {
		return nil, err
	}

	logger.Info("booking created",
		zap.Uint64("booking_id", booking.ID),
		zap.Uint64("user_id", userID),
		zap.Uint64("show_id", booking.ShowID),
		zap.Int("num_seats", booking.NumSeats),
	)
	s.publish(ctx, queue.EventBookingCreated, booking)
	return booking, nil
}

// CancelBooking deletes the user's booking and returns its seats to the
// show counter.  Bookings of shows that already started cannot be
// cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uint64) error {
	var cancelled *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		b, err := s.lockBooking(ctx, tx, bookingID, userID)
		if err != nil {
			return err
		}
		show, err := s.ledger.LoadForUpdate(ctx, tx, b.ShowID)
		if err != nil {
			return err
		}
		if show.HasStarted(s.opts.now()) {
			return ErrShowStarted
		}
		if err := s.shows.AdjustAvailableSeatsTx(ctx, tx, show.ID, b.NumSeats); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
		if err := s.bookings.DeleteTx(ctx, tx, b.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("delete booking: %w", err)
		}
		cancelled = b
		return nil
	})
	s.observe("cancel", err)
	if err != nil {
		return err
	}

	logger.Info("booking cancelled",
		zap.Uint64("booking_id", bookingID),
		zap.Uint64("user_id", userID),
		zap.Uint64("show_id", cancelled.ShowID),
	)
	s.publish(ctx, queue.EventBookingCancelled, cancelled)
	return nil
}

// UpdatePaymentStatus marks the user's booking as paid with the given
// external payment reference.
func (s *BookingService) UpdatePaymentStatus(ctx context.Context, userID, bookingID uint64, paymentID string) (*model.Booking, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		s.observe("payment", ErrPaymentIDMissing)
		return nil, ErrPaymentIDMissing
	}

	var paid *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		b, err := s.lockBooking(ctx, tx, bookingID, userID)
		if err != nil {
			return err
		}
		// completed seats join the show's conflict set, so serialize with
		// lock requests on the same show
		if _, err := s.ledger.LoadForUpdate(ctx, tx, b.ShowID); err != nil {
			return err
		}
		if err := s.bookings.MarkPaidTx(ctx, tx, b.ID, paymentID); err != nil {
			return fmt.Errorf("mark booking paid: %w", err)
		}
		b.PaymentStatus = model.PaymentCompleted
		b.PaymentID = &paymentID
		paid = b
		return nil
	})
	s.observe("payment", err)
	if err != nil {
		return nil, err
	}

	logger.Info("booking paid",
		zap.Uint64("booking_id", bookingID),
		zap.Uint64("user_id", userID),
		zap.String("payment_id", paymentID),
	)
	s.publish(ctx, queue.EventBookingPaid, paid)
	return paid, nil
}

// ListBookings pages through the user's bookings.
func (s *BookingService) ListBookings(ctx context.Context, userID uint64, skip, limit int) ([]model.Booking, error) {
	skip, limit = Page(skip, limit)
	out, err := s.bookings.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// GetBooking returns one of the user's bookings.  Bookings of other
// users are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	b, err := s.bookings.GetForUser(ctx, bookingID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", bookingID, err)
	}
	return b, nil
}

func (s *BookingService) lockBooking(ctx context.Context, tx *sqlx.Tx, bookingID, userID uint64) (*model.Booking, error) {
	b, err := s.bookings.GetForUserForUpdateTx(ctx, tx, bookingID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	return b, nil
}

// publish sends the event after commit.  Failures are logged and
// counted; the booking itself already succeeded.
func (s *BookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := queue.NewBookingEvent(eventType, b, s.opts.now())
	if err := s.events.Publish(ctx, ev); err != nil {
		s.opts.metrics.EventPublishFailures.Inc()
		logger.Warn("publish booking event failed",
			zap.String("type", eventType),
			zap.Uint64("booking_id", b.ID),
			zap.Error(err),
		)
	}
}

func (s *BookingService) observe(op string, err error) {
	s.opts.metrics.BookingsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}
