package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// TxRunner executes fn in one transaction.  *repository.Transactor is
// the production implementation.
type TxRunner interface {
	WithinTx(ctx context.Context, fn repository.TxFunc) error
}

// ShowStore is the slice of *repository.ShowRepo the services use.
type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	List(ctx context.Context, skip, limit int) ([]model.Show, error)
	ListByMovie(ctx context.Context, movieID uint64) ([]model.Show, error)
	ListByTheater(ctx context.Context, theaterID uint64) ([]model.Show, error)
	ExistsAtSameTime(ctx context.Context, theaterID uint64, showTime time.Time, excludeID uint64) (bool, error)
	Update(ctx context.Context, id uint64, u model.ShowUpdate) error
	Delete(ctx context.Context, id uint64) error

	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uint64) (*model.Show, error)
	UpdateLockTx(ctx context.Context, tx *sqlx.Tx, id uint64, seats model.SeatLabels, expiry *time.Time) error
	AdjustAvailableSeatsTx(ctx context.Context, tx *sqlx.Tx, id uint64, delta int) error
}

// BookingStore is the slice of *repository.BookingRepo the services use.
type BookingStore interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, b *model.Booking) error
	GetForUser(ctx context.Context, id, userID uint64) (*model.Booking, error)
	GetForUserForUpdateTx(ctx context.Context, tx *sqlx.Tx, id, userID uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64, skip, limit int) ([]model.Booking, error)
	CompletedSeatsTx(ctx context.Context, tx *sqlx.Tx, showID uint64) (model.SeatLabels, error)
	MarkPaidTx(ctx context.Context, tx *sqlx.Tx, id uint64, paymentID string) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id uint64) error
}

type MovieStore interface {
	List(ctx context.Context, skip, limit int) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
	Update(ctx context.Context, id uint64, u model.MovieUpdate) error
	Delete(ctx context.Context, id uint64) error
}

type TheaterStore interface {
	List(ctx context.Context, skip, limit int) ([]model.Theater, error)
	GetByID(ctx context.Context, id uint64) (*model.Theater, error)
	Create(ctx context.Context, t *model.Theater) error
	Update(ctx context.Context, id uint64, u model.TheaterUpdate) error
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher delivers booking events.  Implementations live in the
// queue package.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Clock returns the current time.  Tests substitute a fixed clock.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
