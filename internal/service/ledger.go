package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// Ledger answers availability questions about one show.  It never opens
// transactions or retries: callers pass the transaction that will also
// carry the mutation, so the answer stays valid until commit.
type Ledger struct {
	shows    ShowStore
	bookings BookingStore
}

func NewLedger(shows ShowStore, bookings BookingStore) *Ledger {
	return &Ledger{shows: shows, bookings: bookings}
}

// LoadForUpdate reads the show and holds its row lock for the rest of
// tx.  A missing show yields ErrShowNotFound.
func (l *Ledger) LoadForUpdate(ctx context.Context, tx *sqlx.Tx, showID uint64) (*model.Show, error) {
	s, err := l.shows.GetForUpdateTx(ctx, tx, showID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load show %d: %w", showID, err)
	}
	return s, nil
}

// ConflictSet returns the seats of the active lock batch (empty when
// the lock expired at now) and the union of the seats of completed
// bookings for the show.
func (l *Ledger) ConflictSet(ctx context.Context, tx *sqlx.Tx, show *model.Show, now time.Time) (locked, booked model.SeatLabels, err error) {
	locked = show.ActiveLock(now)
	booked, err = l.bookings.CompletedSeatsTx(ctx, tx, show.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("completed seats for show %d: %w", show.ID, err)
	}
	return locked, booked, nil
}

// SeatsAvailable is the denormalized counter of the show.
func (l *Ledger) SeatsAvailable(show *model.Show) int {
	return show.AvailableSeats
}
