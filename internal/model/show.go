package model

import "time"

// Show represents one scheduled screening of a movie in a theater.
// Besides the schedule and price it carries the availability state of
// the screening: the denormalized available seat counter and the
// current seat lock batch.
//
// Fields:
//  ID                – primary key identifier.
//  MovieID           – movie being screened.
//  TheaterID         – theater hosting the screening.
//  ShowTime          – scheduled start (UTC).
//  TotalSeats        – capacity fixed when the show is created.
//  AvailableSeats    – seats not yet taken by bookings.
//  Price             – flat per-seat price.
//  LockedSeats       – labels of the current lock batch.
//  LockedSeatsExpiry – expiry of the whole lock batch (nil when unlocked).
type Show struct {
	ID                uint64     `db:"id" json:"id"`                                   // shows.id
	MovieID           uint64     `db:"movie_id" json:"movie_id"`                       // shows.movie_id
	TheaterID         uint64     `db:"theater_id" json:"theater_id"`                   // shows.theater_id
	ShowTime          time.Time  `db:"show_time" json:"show_time"`                     // shows.show_time
	TotalSeats        int        `db:"total_seats" json:"total_seats"`                 // shows.total_seats
	AvailableSeats    int        `db:"available_seats" json:"available_seats"`         // shows.available_seats
	Price             float64    `db:"price" json:"price"`                             // shows.price
	LockedSeats       SeatLabels `db:"locked_seats" json:"locked_seats"`               // shows.locked_seats (JSON)
	LockedSeatsExpiry *time.Time `db:"locked_seats_expiry" json:"locked_seats_expiry"` // shows.locked_seats_expiry (nullable)
}

// ActiveLock returns the locked labels when the lock batch has not yet
// expired at now.  An expired or absent lock yields an empty set.
func (s *Show) ActiveLock(now time.Time) SeatLabels {
	if s.LockedSeatsExpiry == nil || !s.LockedSeatsExpiry.After(now) {
		return SeatLabels{}
	}
	return s.LockedSeats
}

// HasStarted reports whether the show start is at or before now.
func (s *Show) HasStarted(now time.Time) bool {
	return !s.ShowTime.After(now)
}

// NewShow carries the fields accepted when a show is scheduled.
// AvailableSeats seeds both counters; zero means "use the theater
// capacity".
type NewShow struct {
	MovieID        uint64
	TheaterID      uint64
	ShowTime       time.Time
	AvailableSeats int
	Price          float64
}

// ShowUpdate names exactly the columns a catalog update may change.
// Seat counters and lock fields are deliberately absent.
type ShowUpdate struct {
	MovieID   uint64
	TheaterID uint64
	ShowTime  time.Time
	Price     float64
}
