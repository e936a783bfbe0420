// Package repository contains data access logic.  This file holds the
// show queries, including the row-locking reads and the narrow writes
// used by seat locking and booking.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql.NullTime for the lock expiry
	"fmt"          // error wrapping
	"time"         // show and lock timestamps

	"github.com/jmoiron/sqlx" // sqlx scanning into model structs

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const showColumns = `id, movie_id, theater_id, show_time, total_seats, available_seats, price, locked_seats, locked_seats_expiry`

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sqlx.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sqlx.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying handle for callers that need to open their
// own transaction.
func (r *ShowRepo) DB() *sqlx.DB {
	return r.db
}

// Create inserts a new show with an empty lock batch and assigns the
// generated ID back to s.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (movie_id, theater_id, show_time, total_seats, available_seats, price, locked_seats, locked_seats_expiry)
               VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`
	if s.LockedSeats == nil {
		s.LockedSeats = model.SeatLabels{}
	}
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.TheaterID, s.ShowTime.UTC(), s.TotalSeats, s.AvailableSeats, s.Price, s.LockedSeats)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.LockedSeatsExpiry = nil
	return nil
}

// GetByID retrieves a show without locking it.  Returns ErrNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	var s model.Show
	if err := r.db.GetContext(ctx, &s, `SELECT `+showColumns+` FROM shows WHERE id = ?`, id); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

// GetForUpdateTx reads a show and takes an exclusive row lock on it for
// the rest of tx.  Every read-check-write on a show's seat state goes
// through here so concurrent transactions on the same show serialize.
func (r *ShowRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uint64) (*model.Show, error) {
	var s model.Show
	if err := tx.GetContext(ctx, &s, `SELECT `+showColumns+` FROM shows WHERE id = ? FOR UPDATE`, id); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

// List returns shows ordered by id using offset pagination.
func (r *ShowRepo) List(ctx context.Context, skip, limit int) ([]model.Show, error) {
	shows := []model.Show{}
	err := r.db.SelectContext(ctx, &shows, `SELECT `+showColumns+` FROM shows ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	return shows, mapError(err)
}

// ListByMovie returns every show of a movie ordered by start time.
func (r *ShowRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Show, error) {
	shows := []model.Show{}
	err := r.db.SelectContext(ctx, &shows, `SELECT `+showColumns+` FROM shows WHERE movie_id = ? ORDER BY show_time`, movieID)
	return shows, mapError(err)
}

// ListByTheater returns every show in a theater ordered by start time.
func (r *ShowRepo) ListByTheater(ctx context.Context, theaterID uint64) ([]model.Show, error) {
	shows := []model.Show{}
	err := r.db.SelectContext(ctx, &shows, `SELECT `+showColumns+` FROM shows WHERE theater_id = ? ORDER BY show_time`, theaterID)
	return shows, mapError(err)
}

// ExistsAtSameTime reports whether another show in the theater starts at
// exactly showTime.  The bounds mirror the scheduling rule used by the
// catalog: only an identical start instant counts as a clash, not an
// overlapping screening interval.  excludeID skips the show being
// updated (0 for none).
func (r *ShowRepo) ExistsAtSameTime(ctx context.Context, theaterID uint64, showTime time.Time, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM shows
               WHERE theater_id = ? AND id <> ? AND show_time <= ? AND show_time >= ?`
	t := showTime.UTC()
	var n int
	if err := r.db.GetContext(ctx, &n, q, theaterID, excludeID, t, t); err != nil {
		return false, mapError(err)
	}
	return n > 0, nil
}

// Update writes the catalog fields named by u.  Seat counters and lock
// fields are never touched here.
func (r *ShowRepo) Update(ctx context.Context, id uint64, u model.ShowUpdate) error {
	const q = `UPDATE shows SET movie_id = ?, theater_id = ?, show_time = ?, price = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, u.MovieID, u.TheaterID, u.ShowTime.UTC(), u.Price, id)
	return mapError(err)
}

// Delete removes a show that has no bookings.  The check and the delete
// run in one transaction holding the show row lock.  Returns
// ErrNotFound when the show does not exist and ErrConflict when any
// booking references it.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = mapError(tx.Commit())
		}
	}()
	if _, err = r.GetForUpdateTx(ctx, tx, id); err != nil {
		return err
	}
	var bookings int
	if err = tx.GetContext(ctx, &bookings, `SELECT COUNT(*) FROM bookings WHERE show_id = ?`, id); err != nil {
		return mapError(err)
	}
	if bookings > 0 {
		return fmt.Errorf("%w: show %d has %d bookings", ErrConflict, id, bookings)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id); err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateLockTx replaces the lock batch of a show.  A nil expiry clears
// the lock timestamp.
func (r *ShowRepo) UpdateLockTx(ctx context.Context, tx *sqlx.Tx, id uint64, seats model.SeatLabels, expiry *time.Time) error {
	var exp sql.NullTime
	if expiry != nil {
		exp = sql.NullTime{Time: expiry.UTC(), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `UPDATE shows SET locked_seats = ?, locked_seats_expiry = ? WHERE id = ?`, seats, exp, id)
	return mapError(err)
}

// AdjustAvailableSeatsTx adds delta (negative to reserve, positive to
// release) to the available seat counter.
func (r *ShowRepo) AdjustAvailableSeatsTx(ctx context.Context, tx *sqlx.Tx, id uint64, delta int) error {
	_, err := tx.ExecContext(ctx, `UPDATE shows SET available_seats = available_seats + ? WHERE id = ?`, delta, id)
	return mapError(err)
}
