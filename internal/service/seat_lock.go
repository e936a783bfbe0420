package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// LockResult describes a granted lock batch.
type LockResult struct {
	ShowID uint64           `json:"show_id"`
	Seats  model.SeatLabels `json:"locked_seats"`
	Expiry time.Time        `json:"expiry_time"`
}

// SeatLockManager grants and releases temporary seat locks.  A show has
// a single lock batch: a successful LockSeats replaces whatever batch
// was stored before, and the batch stops counting once its expiry
// passes.  Nothing sweeps expired batches; they are ignored on read.
type SeatLockManager struct {
	tx     TxRunner
	shows  ShowStore
	ledger *Ledger
	opts   options
}

func NewSeatLockManager(tx TxRunner, shows ShowStore, bookings BookingStore, opts ...Option) *SeatLockManager {
	return &SeatLockManager{
		tx:     tx,
		shows:  shows,
		ledger: NewLedger(shows, bookings),
		opts:   buildOptions(opts),
	}
}

// LockSeats locks seats on the show for the configured TTL.  It fails
// with a *SeatConflictError when a requested seat is in the active lock
// batch or in a completed booking.
func (m *SeatLockManager) LockSeats(ctx context.Context, showID uint64, seats []string) (*LockResult, error) {
	req := model.NormalizeSeats(seats)
	if len(req) == 0 {
		m.observe("lock", ErrNoSeats)
		return nil, ErrNoSeats
	}

	var res *LockResult
	err := m.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		show, err := m.ledger.LoadForUpdate(ctx, tx, showID)
		if err != nil {
			return err
		}
		now := m.opts.now()
		locked, booked, err := m.ledger.ConflictSet(ctx, tx, show, now)
		if err != nil {
			return err
		}
		if clash := req.Intersect(locked); len(clash) > 0 {
			return &SeatConflictError{Kind: ErrSeatsLocked, Seats: clash}
		}
		if clash := req.Intersect(booked); len(clash) > 0 {
			return &SeatConflictError{Kind: ErrSeatsBooked, Seats: clash}
		}

		expiry := now.Add(m.opts.lockTTL)
		if err := m.shows.UpdateLockTx(ctx, tx, showID, req, &expiry); err != nil {
			return fmt.Errorf("store lock for show %d: %w", showID, err)
		}
		res = &LockResult{ShowID: showID, Seats: req, Expiry: expiry}
		return nil
	})
	m.observe("lock", err)
	if err != nil {
		return nil, err
	}
	logger.Info("seats locked",
		zap.Uint64("show_id", showID),
		zap.Strings("seats", res.Seats),
		zap.Time("expiry", res.Expiry),
	)
	return res, nil
}

// UnlockSeats removes seats from the show's lock batch and clears the
// expiry once the batch is empty.  Seats that are not locked are
// ignored, so unlocking a show without a lock succeeds.
func (m *SeatLockManager) UnlockSeats(ctx context.Context, showID uint64, seats []string) error {
	req := model.NormalizeSeats(seats)
	if len(req) == 0 {
		m.observe("unlock", ErrNoSeats)
		return ErrNoSeats
	}

	err := m.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		show, err := m.ledger.LoadForUpdate(ctx, tx, showID)
		if err != nil {
			return err
		}
		remaining := show.LockedSeats.Without(req)
		if len(remaining) == len(show.LockedSeats) {
			return nil
		}
		expiry := show.LockedSeatsExpiry
		if len(remaining) == 0 {
			expiry = nil
		}
		if err := m.shows.UpdateLockTx(ctx, tx, showID, remaining, expiry); err != nil {
			return fmt.Errorf("store lock for show %d: %w", showID, err)
		}
		return nil
	})
	m.observe("unlock", err)
	if err != nil {
		return err
	}
	logger.Debug("seats unlocked", zap.Uint64("show_id", showID), zap.Strings("seats", req))
	return nil
}

func (m *SeatLockManager) observe(op string, err error) {
	m.opts.metrics.SeatLocksTotal.WithLabelValues(op, resultLabel(err)).Inc()
}
