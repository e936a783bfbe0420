package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const bookingColumns = `id, user_id, show_id, num_seats, total_amount, booking_time, payment_status, payment_id, seat_numbers`

// BookingRepo persists bookings.  Lookups that take a user id are
// ownership scoped: a booking owned by someone else is reported as
// ErrNotFound so callers cannot probe for other users' data.
type BookingRepo struct {
	db *sqlx.DB
}

func NewBookingRepo(db *sqlx.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// CreateTx inserts b and assigns the generated ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, show_id, num_seats, total_amount, booking_time, payment_status, payment_id, seat_numbers)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ShowID, b.NumSeats, b.TotalAmount, b.BookingTime.UTC(), b.PaymentStatus, b.PaymentID, b.SeatNumbers)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetForUser returns one booking owned by userID.
func (r *BookingRepo) GetForUser(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	var b model.Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

// GetForUserForUpdateTx is GetForUser inside tx with a row lock on the
// booking.
func (r *BookingRepo) GetForUserForUpdateTx(ctx context.Context, tx *sqlx.Tx, id, userID uint64) (*model.Booking, error) {
	var b model.Booking
	err := tx.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND user_id = ? FOR UPDATE`, id, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

// ListByUser pages through a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, skip, limit int) ([]model.Booking, error) {
	out := []model.Booking{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY booking_time DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, skip)
	return out, mapError(err)
}

// CompletedSeatsTx returns the union of seat labels across the show's
// bookings whose payment completed.
func (r *BookingRepo) CompletedSeatsTx(ctx context.Context, tx *sqlx.Tx, showID uint64) (model.SeatLabels, error) {
	var rows []model.SeatLabels
	err := tx.SelectContext(ctx, &rows,
		`SELECT seat_numbers FROM bookings WHERE show_id = ? AND payment_status = ?`,
		showID, model.PaymentCompleted)
	if err != nil {
		return nil, mapError(err)
	}
	return model.Union(rows...), nil
}

// MarkPaidTx sets the booking to completed and records the payment
// reference.
func (r *BookingRepo) MarkPaidTx(ctx context.Context, tx *sqlx.Tx, id uint64, paymentID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET payment_status = ?, payment_id = ? WHERE id = ?`,
		model.PaymentCompleted, paymentID, id)
	return mapError(err)
}

// DeleteTx removes a booking row.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	return nil
}
