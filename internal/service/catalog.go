package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// Paging defaults for list endpoints.
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page clamps skip/limit: negative skip becomes 0, a missing limit
// becomes DefaultLimit and larger limits are capped at MaxLimit.
func Page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return skip, limit
}

// CatalogService manages movies, theaters and shows.
type CatalogService struct {
	movies   MovieStore
	theaters TheaterStore
	shows    ShowStore
	opts     options
}

func NewCatalogService(movies MovieStore, theaters TheaterStore, shows ShowStore, opts ...Option) *CatalogService {
	return &CatalogService{movies: movies, theaters: theaters, shows: shows, opts: buildOptions(opts)}
}

// mapNotFound replaces repository.ErrNotFound with the given service
// error and wraps anything else with op.
func mapNotFound(err error, notFound error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrInUse)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// ---- movies ----

func (c *CatalogService) ListMovies(ctx context.Context, skip, limit int) ([]model.Movie, error) {
	skip, limit = Page(skip, limit)
	out, err := c.movies.List(ctx, skip, limit)
	return out, mapNotFound(err, ErrMovieNotFound, "list movies")
}

func (c *CatalogService) GetMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := c.movies.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrMovieNotFound, "get movie")
	}
	return m, nil
}

func (c *CatalogService) CreateMovie(ctx context.Context, m *model.Movie) error {
	if err := c.movies.Create(ctx, m); err != nil {
		return fmt.Errorf("create movie: %w", err)
	}
	logger.Info("movie created", zap.Uint64("movie_id", m.ID), zap.String("title", m.Title))
	return nil
}

// UpdateMovie overwrites the mutable movie fields and returns the
// stored row.
func (c *CatalogService) UpdateMovie(ctx context.Context, id uint64, u model.MovieUpdate) (*model.Movie, error) {
	if _, err := c.GetMovie(ctx, id); err != nil {
		return nil, err
	}
	if err := c.movies.Update(ctx, id, u); err != nil {
		return nil, mapNotFound(err, ErrMovieNotFound, "update movie")
	}
	return c.GetMovie(ctx, id)
}

func (c *CatalogService) DeleteMovie(ctx context.Context, id uint64) error {
	return mapNotFound(c.movies.Delete(ctx, id), ErrMovieNotFound, "delete movie")
}

// ---- theaters ----

func (c *CatalogService) ListTheaters(ctx context.Context, skip, limit int) ([]model.Theater, error) {
	skip, limit = Page(skip, limit)
	out, err := c.theaters.List(ctx, skip, limit)
	return out, mapNotFound(err, ErrTheaterNotFound, "list theaters")
}

func (c *CatalogService) GetTheater(ctx context.Context, id uint64) (*model.Theater, error) {
	t, err := c.theaters.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTheaterNotFound, "get theater")
	}
	return t, nil
}

func (c *CatalogService) CreateTheater(ctx context.Context, t *model.Theater) error {
	if t.TotalSeats <= 0 {
		return ErrBadCapacity
	}
	if err := c.theaters.Create(ctx, t); err != nil {
		return fmt.Errorf("create theater: %w", err)
	}
	logger.Info("theater created", zap.Uint64("theater_id", t.ID), zap.String("name", t.Name))
	return nil
}

func (c *CatalogService) UpdateTheater(ctx context.Context, id uint64, u model.TheaterUpdate) (*model.Theater, error) {
	if u.TotalSeats <= 0 {
		return nil, ErrBadCapacity
	}
	if _, err := c.GetTheater(ctx, id); err != nil {
		return nil, err
	}
	if err := c.theaters.Update(ctx, id, u); err != nil {
		return nil, mapNotFound(err, ErrTheaterNotFound, "update theater")
	}
	return c.GetTheater(ctx, id)
}

func (c *CatalogService) DeleteTheater(ctx context.Context, id uint64) error {
	return mapNotFound(c.theaters.Delete(ctx, id), ErrTheaterNotFound, "delete theater")
}

// ---- shows ----

func (c *CatalogService) ListShows(ctx context.Context, skip, limit int) ([]model.Show, error) {
	skip, limit = Page(skip, limit)
	out, err := c.shows.List(ctx, skip, limit)
	return out, mapNotFound(err, ErrShowNotFound, "list shows")
}

func (c *CatalogService) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	s, err := c.shows.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrShowNotFound, "get show")
	}
	return s, nil
}

// ListShowsByMovie returns an empty list for unknown movies.
func (c *CatalogService) ListShowsByMovie(ctx context.Context, movieID uint64) ([]model.Show, error) {
	out, err := c.shows.ListByMovie(ctx, movieID)
	return out, mapNotFound(err, ErrShowNotFound, "list shows by movie")
}

func (c *CatalogService) ListShowsByTheater(ctx context.Context, theaterID uint64) ([]model.Show, error) {
	out, err := c.shows.ListByTheater(ctx, theaterID)
	return out, mapNotFound(err, ErrShowNotFound, "list shows by theater")
}

// CreateShow schedules a screening.  Both seat counters start at
// in.AvailableSeats, or at the theater capacity when that is zero.
//
// The clash check only rejects a second show starting at the very same
// instant in the same theater; screenings whose running times overlap
// are accepted.
func (c *CatalogService) CreateShow(ctx context.Context, in model.NewShow) (*model.Show, error) {
	if _, err := c.GetMovie(ctx, in.MovieID); err != nil {
		return nil, err
	}
	theater, err := c.GetTheater(ctx, in.TheaterID)
	if err != nil {
		return nil, err
	}
	if !in.ShowTime.After(c.opts.now()) {
		return nil, ErrShowTimeNotFuture
	}
	if err := c.checkClash(ctx, in.TheaterID, in.ShowTime, 0); err != nil {
		return nil, err
	}

	seats := in.AvailableSeats
	if seats == 0 {
		seats = theater.TotalSeats
	}
	if seats <= 0 {
		return nil, ErrBadCapacity
	}
	s := &model.Show{
		MovieID:        in.MovieID,
		TheaterID:      in.TheaterID,
		ShowTime:       in.ShowTime.UTC(),
		TotalSeats:     seats,
		AvailableSeats: seats,
		Price:          in.Price,
		LockedSeats:    model.SeatLabels{},
	}
	if err := c.shows.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create show: %w", err)
	}
	logger.Info("show created",
		zap.Uint64("show_id", s.ID),
		zap.Uint64("theater_id", s.TheaterID),
		zap.Time("show_time", s.ShowTime),
	)
	return s, nil
}

// checkClash rejects a show starting at exactly showTime in the same
// theater.  excludeID skips the show being updated.
func (c *CatalogService) checkClash(ctx context.Context, theaterID uint64, showTime time.Time, excludeID uint64) error {
	clash, err := c.shows.ExistsAtSameTime(ctx, theaterID, showTime, excludeID)
	if err != nil {
		return fmt.Errorf("check show schedule: %w", err)
	}
	if clash {
		return ErrShowOverlap
	}
	return nil
}

// UpdateShow changes the schedule fields of a show.  Seat counters and
// the lock batch are left as they are.
func (c *CatalogService) UpdateShow(ctx context.Context, id uint64, u model.ShowUpdate) (*model.Show, error) {
	if _, err := c.GetShow(ctx, id); err != nil {
		return nil, err
	}
	if _, err := c.GetMovie(ctx, u.MovieID); err != nil {
		return nil, err
	}
	if _, err := c.GetTheater(ctx, u.TheaterID); err != nil {
		return nil, err
	}
	if !u.ShowTime.After(c.opts.now()) {
		return nil, ErrShowTimeNotFuture
	}
	if err := c.checkClash(ctx, u.TheaterID, u.ShowTime, id); err != nil {
		return nil, err
	}
	u.ShowTime = u.ShowTime.UTC()
	if err := c.shows.Update(ctx, id, u); err != nil {
		return nil, mapNotFound(err, ErrShowNotFound, "update show")
	}
	return c.GetShow(ctx, id)
}

// DeleteShow removes a show without bookings.
func (c *CatalogService) DeleteShow(ctx context.Context, id uint64) error {
	err := c.shows.Delete(ctx, id)
	switch {
	case err == nil:
		logger.Info("show deleted", zap.Uint64("show_id", id))
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrShowNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrShowHasBookings
	default:
		return fmt.Errorf("delete show: %w", err)
	}
}
