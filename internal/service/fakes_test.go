package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// memStore is an in-memory ShowStore and BookingStore.  Rows are stored
// by value so that snapshot/restore can emulate a rollback.
type memStore struct {
	mu          sync.Mutex
	shows       map[uint64]model.Show
	bookings    map[uint64]model.Booking
	nextShow    uint64
	nextBooking uint64

	failCreateBooking error
}

func newMemStore() *memStore {
	return &memStore{shows: map[uint64]model.Show{}, bookings: map[uint64]model.Booking{}}
}

type memSnapshot struct {
	shows       map[uint64]model.Show
	bookings    map[uint64]model.Booking
	nextShow    uint64
	nextBooking uint64
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memSnapshot{shows: map[uint64]model.Show{}, bookings: map[uint64]model.Booking{}, nextShow: m.nextShow, nextBooking: m.nextBooking}
	for k, v := range m.shows {
		s.shows[k] = v
	}
	for k, v := range m.bookings {
		s.bookings[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shows, m.bookings, m.nextShow, m.nextBooking = s.shows, s.bookings, s.nextShow, s.nextBooking
}

func cloneSeats(s model.SeatLabels) model.SeatLabels {
	return append(model.SeatLabels{}, s...)
}

// addShow seeds a show with total seats and returns its id.
func (m *memStore) addShow(theaterID uint64, at time.Time, total int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextShow++
	m.shows[m.nextShow] = model.Show{
		ID: m.nextShow, MovieID: 1, TheaterID: theaterID, ShowTime: at,
		TotalSeats: total, AvailableSeats: total, Price: 10, LockedSeats: model.SeatLabels{},
	}
	return m.nextShow
}

func (m *memStore) show(id uint64) model.Show {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shows[id]
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) bookedSeats(showID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.ShowID == showID {
			n += b.NumSeats
		}
	}
	return n
}

// ---- ShowStore ----

func (m *memStore) Create(_ context.Context, s *model.Show) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextShow++
	s.ID = m.nextShow
	m.shows[s.ID] = *s
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.LockedSeats = cloneSeats(s.LockedSeats)
	return &s, nil
}

func (m *memStore) sortedShows(keep func(model.Show) bool) []model.Show {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Show{}
	for _, s := range m.shows {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) List(_ context.Context, skip, limit int) ([]model.Show, error) {
	all := m.sortedShows(func(model.Show) bool { return true })
	if skip >= len(all) {
		return []model.Show{}, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memStore) ListByMovie(_ context.Context, movieID uint64) ([]model.Show, error) {
	return m.sortedShows(func(s model.Show) bool { return s.MovieID == movieID }), nil
}

func (m *memStore) ListByTheater(_ context.Context, theaterID uint64) ([]model.Show, error) {
	return m.sortedShows(func(s model.Show) bool { return s.TheaterID == theaterID }), nil
}

func (m *memStore) ExistsAtSameTime(_ context.Context, theaterID uint64, showTime time.Time, excludeID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shows {
		if s.TheaterID == theaterID && s.ID != excludeID && s.ShowTime.Equal(showTime) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Update(_ context.Context, id uint64, u model.ShowUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.MovieID, s.TheaterID, s.ShowTime, s.Price = u.MovieID, u.TheaterID, u.ShowTime, u.Price
	m.shows[id] = s
	return nil
}

func (m *memStore) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shows[id]; !ok {
		return repository.ErrNotFound
	}
	for _, b := range m.bookings {
		if b.ShowID == id {
			return fmt.Errorf("%w: show %d has bookings", repository.ErrConflict, id)
		}
	}
	delete(m.shows, id)
	return nil
}

func (m *memStore) GetForUpdateTx(ctx context.Context, _ *sqlx.Tx, id uint64) (*model.Show, error) {
	return m.GetByID(ctx, id)
}

func (m *memStore) UpdateLockTx(_ context.Context, _ *sqlx.Tx, id uint64, seats model.SeatLabels, expiry *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.shows[id]
	s.LockedSeats = cloneSeats(seats)
	if expiry != nil {
		e := *expiry
		s.LockedSeatsExpiry = &e
	} else {
		s.LockedSeatsExpiry = nil
	}
	m.shows[id] = s
	return nil
}

func (m *memStore) AdjustAvailableSeatsTx(_ context.Context, _ *sqlx.Tx, id uint64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.shows[id]
	s.AvailableSeats += delta
	m.shows[id] = s
	return nil
}

// ---- BookingStore ----

func (m *memStore) CreateTx(_ context.Context, _ *sqlx.Tx, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateBooking != nil {
		return m.failCreateBooking
	}
	m.nextBooking++
	b.ID = m.nextBooking
	stored := *b
	stored.SeatNumbers = cloneSeats(b.SeatNumbers)
	m.bookings[b.ID] = stored
	return nil
}

func (m *memStore) GetForUser(_ context.Context, id, userID uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) GetForUserForUpdateTx(ctx context.Context, _ *sqlx.Tx, id, userID uint64) (*model.Booking, error) {
	return m.GetForUser(ctx, id, userID)
}

func (m *memStore) ListByUser(_ context.Context, userID uint64, skip, limit int) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Booking{}
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if skip >= len(out) {
		return []model.Booking{}, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CompletedSeatsTx(_ context.Context, _ *sqlx.Tx, showID uint64) (model.SeatLabels, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var parts []model.SeatLabels
	for _, b := range m.bookings {
		if b.ShowID == showID && b.IsCompleted() {
			parts = append(parts, b.SeatNumbers)
		}
	}
	return model.Union(parts...), nil
}

func (m *memStore) MarkPaidTx(_ context.Context, _ *sqlx.Tx, id uint64, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentStatus = model.PaymentCompleted
	b.PaymentID = &paymentID
	m.bookings[id] = b
	return nil
}

func (m *memStore) DeleteTx(_ context.Context, _ *sqlx.Tx, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

// fakeTx serializes units of work the way the show row lock does and
// restores the store when the unit fails.
type fakeTx struct {
	mu    sync.Mutex
	store *memStore
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	snap := f.store.snapshot()
	if err := fn(ctx, nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockPublisher records published events.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type mockMovieStore struct {
	mock.Mock
}

func (m *mockMovieStore) List(ctx context.Context, skip, limit int) ([]model.Movie, error) {
	args := m.Called(ctx, skip, limit)
	out, _ := args.Get(0).([]model.Movie)
	return out, args.Error(1)
}

func (m *mockMovieStore) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.Movie)
	return out, args.Error(1)
}

func (m *mockMovieStore) Create(ctx context.Context, mv *model.Movie) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *mockMovieStore) Update(ctx context.Context, id uint64, u model.MovieUpdate) error {
	return m.Called(ctx, id, u).Error(0)
}

func (m *mockMovieStore) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockTheaterStore struct {
	mock.Mock
}

func (m *mockTheaterStore) List(ctx context.Context, skip, limit int) ([]model.Theater, error) {
	args := m.Called(ctx, skip, limit)
	out, _ := args.Get(0).([]model.Theater)
	return out, args.Error(1)
}

func (m *mockTheaterStore) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.Theater)
	return out, args.Error(1)
}

func (m *mockTheaterStore) Create(ctx context.Context, t *model.Theater) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTheaterStore) Update(ctx context.Context, id uint64, u model.TheaterUpdate) error {
	return m.Called(ctx, id, u).Error(0)
}

func (m *mockTheaterStore) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}
