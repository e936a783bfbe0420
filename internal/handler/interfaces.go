package handler

import (
	"context"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// SeatLocker is implemented by *service.SeatLockManager.
type SeatLocker interface {
	LockSeats(ctx context.Context, showID uint64, seats []string) (*service.LockResult, error)
	UnlockSeats(ctx context.Context, showID uint64, seats []string) error
}

// BookingManager is implemented by *service.BookingService.
type BookingManager interface {
	CreateBooking(ctx context.Context, userID uint64, in service.CreateBookingInput) (*model.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID uint64) error
	UpdatePaymentStatus(ctx context.Context, userID, bookingID uint64, paymentID string) (*model.Booking, error)
	ListBookings(ctx context.Context, userID uint64, skip, limit int) ([]model.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error)
}

// Catalog is implemented by *service.CatalogService.
type Catalog interface {
	ListMovies(ctx context.Context, skip, limit int) ([]model.Movie, error)
	GetMovie(ctx context.Context, id uint64) (*model.Movie, error)
	CreateMovie(ctx context.Context, m *model.Movie) error
	UpdateMovie(ctx context.Context, id uint64, u model.MovieUpdate) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id uint64) error

	ListTheaters(ctx context.Context, skip, limit int) ([]model.Theater, error)
	GetTheater(ctx context.Context, id uint64) (*model.Theater, error)
	CreateTheater(ctx context.Context, t *model.Theater) error
	UpdateTheater(ctx context.Context, id uint64, u model.TheaterUpdate) (*model.Theater, error)
	DeleteTheater(ctx context.Context, id uint64) error

	ListShows(ctx context.Context, skip, limit int) ([]model.Show, error)
	GetShow(ctx context.Context, id uint64) (*model.Show, error)
	ListShowsByMovie(ctx context.Context, movieID uint64) ([]model.Show, error)
	ListShowsByTheater(ctx context.Context, theaterID uint64) ([]model.Show, error)
	CreateShow(ctx context.Context, in model.NewShow) (*model.Show, error)
	UpdateShow(ctx context.Context, id uint64, u model.ShowUpdate) (*model.Show, error)
	DeleteShow(ctx context.Context, id uint64) error
}

// UserStore is implemented by *repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenStore is implemented by *repository.TokenRepo.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
}
