package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/metrics"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
)

type bookingFixture struct {
	store    *memStore
	clock    *fakeClock
	m        *metrics.Metrics
	events   *mockPublisher
	locks    *SeatLockManager
	bookings *BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	store := newMemStore()
	clock := &fakeClock{now: baseTime}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	events := &mockPublisher{}
	events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	tx := &fakeTx{store: store}
	return &bookingFixture{
		store:    store,
		clock:    clock,
		m:        m,
		events:   events,
		locks:    NewSeatLockManager(tx, store, store, WithClock(clock.Now), WithMetrics(m)),
		bookings: NewBookingService(tx, store, store, events, WithClock(clock.Now), WithMetrics(m)),
	}
}

func (f *bookingFixture) book(t *testing.T, userID, showID uint64, seats ...string) *model.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), userID, CreateBookingInput{
		ShowID: showID, NumSeats: len(seats), TotalAmount: float64(10 * len(seats)), SeatNumbers: seats,
	})
	require.NoError(t, err)
	return b
}

func (f *bookingFixture) publishedTypes() []string {
	var out []string
	for _, c := range f.events.Calls {
		if c.Method == "Publish" {
			out = append(out, c.Arguments.Get(1).(queue.BookingEvent).Type)
		}
	}
	return out
}

func TestBookingScenario(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	showID := f.store.addShow(1, baseTime.Add(48*time.Hour), 3)

	_, err := f.locks.LockSeats(ctx, showID, []string{"A1", "A2"})
	require.NoError(t, err)

	_, err = f.locks.LockSeats(ctx, showID, []string{"A2", "A3"})
	require.ErrorIs(t, err, ErrConflict)

	b := f.book(t, 7, showID, "A1", "A2")
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.Nil(t, b.PaymentID)
	assert.Equal(t, baseTime, b.BookingTime)
	assert.Equal(t, 1, f.store.show(showID).AvailableSeats)
	assert.Equal(t, model.SeatLabels{"A1", "A2"}, f.store.show(showID).LockedSeats, "booking leaves the lock in place")

	require.NoError(t, f.bookings.CancelBooking(ctx, 7, b.ID))
	assert.Equal(t, 3, f.store.show(showID).AvailableSeats)
	_, err = f.bookings.GetBooking(ctx, 7, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.Equal(t, []string{queue.EventBookingCreated, queue.EventBookingCancelled}, f.publishedTypes())
}

func TestCreateBooking_CounterInvariant(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	showID := f.store.addShow(1, baseTime.Add(time.Hour), 20)

	var created []*model.Booking
	for i, seats := range [][]string{{"A1"}, {"A2", "A3"}, {"B1", "B2", "B3"}, {"C1"}} {
		created = append(created, f.book(t, uint64(i+1), showID, seats...))
	}
	require.NoError(t, f.bookings.CancelBooking(ctx, created[1].UserID, created[1].ID))
	require.NoError(t, f.bookings.CancelBooking(ctx, created[3].UserID, created[3].ID))

	s := f.store.show(showID)
	assert.Equal(t, s.TotalSeats-f.store.bookedSeats(showID), s.AvailableSeats)
	assert.Equal(t, 16, s.AvailableSeats)
	assert.Equal(t, 2, f.store.bookingCount())
}

func TestCreateBooking_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing show", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.bookings.CreateBooking(ctx, 1, CreateBookingInput{ShowID: 99, NumSeats: 1})
		assert.ErrorIs(t, err, ErrShowNotFound)
	})

	t.Run("past show", func(t *testing.T) {
		f := newBookingFixture(t)
		showID := f.store.addShow(1, baseTime.Add(-time.Minute), 5)
		_, err := f.bookings.CreateBooking(ctx, 1, CreateBookingInput{ShowID: showID, NumSeats: 1, SeatNumbers: []string{"A1"}})
		assert.ErrorIs(t, err, ErrShowInPast)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, 5, f.store.show(showID).AvailableSeats)
	})

	t.Run("show starting now", func(t *testing.T) {
		f := newBookingFixture(t)
		showID := f.store.addShow(1, baseTime, 5)
		_, err := f.bookings.CreateBooking(ctx, 1, CreateBookingInput{ShowID: showID, NumSeats: 1})
		assert.ErrorIs(t, err, ErrShowInPast)
	})

	t.Run("insufficient seats", func(t *testing.T) {
		f := newBookingFixture(t)
		showID := f.store.addShow(1, baseTime.Add(time.Hour), 2)
		_, err := f.bookings.CreateBooking(ctx, 1, CreateBookingInput{ShowID: showID, NumSeats: 3})
		assert.ErrorIs(t, err, ErrInsufficientSeats)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, 2, f.store.show(showID).AvailableSeats)
		assert.Zero(t, f.store.bookingCount())
	})

	t.Run("non-positive seat count", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.bookings.CreateBooking(ctx, 1, CreateBookingInput{ShowID: 1, NumSeats: 0})
		assert.ErrorIs(t, err, ErrBadSeatCount)
	})

	t.Run("insert failure rolls back counter", func(t *testing.T) {
		f := newBookingFixture(t)
		showID := f.store.addShow(1, baseTime.Add(time.Hour), 4)
		f.store.failCreateBooking = errors.New("disk full")

		_, err := f.bookings.CreateBooking(ctx, 1, CreateBookingInput{ShowID: showID, NumSeats: 2})
		require.Error(t, err)
		assert.Equal(t, 4, f.store.show(showID).AvailableSeats)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.m.BookingsTotal.WithLabelValues("create", "error")))
	})

	f := newBookingFixture(t)
	_, _ = f.bookings.CreateBooking(ctx, 1, CreateBookingInput{ShowID: 99, NumSeats: 1})
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("restores exactly num_seats", func(t *testing.T) {
		f := newBookingFixture(t)
		showID := f.store.addShow(1, baseTime.Add(time.Hour), 10)
		b := f.book(t, 3, showID, "A1", "A2", "A3")
		require.Equal(t, 7, f.store.show(showID).AvailableSeats)

		require.NoError(t, f.bookings.CancelBooking(ctx, 3, b.ID))
		assert.Equal(t, 10, f.store.show(showID).AvailableSeats)
		assert.Zero(t, f.store.bookingCount())
	})

	t.Run("other user sees not found", func(t *testing.T) {
		f := newBookingFixture(t)
		showID := f.store.addShow(1, baseTime.Add(time.Hour), 10)
		b := f.book(t, 3, showID, "A1")

		err := f.bookings.CancelBooking(ctx, 4, b.ID)
		assert.ErrorIs(t, err, ErrBookingNotFound)
		assert.Equal(t, 9, f.store.show(showID).AvailableSeats)
	})

	t.Run("started show", func(t *testing.T) {
		f := newBookingFixture(t)
		showID := f.store.addShow(1, baseTime.Add(time.Hour), 10)
		b := f.book(t, 3, showID, "A1", "A2")
		f.clock.Advance(2 * time.Hour)

		err := f.bookings.CancelBooking(ctx, 3, b.ID)
		assert.ErrorIs(t, err, ErrShowStarted)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, 8, f.store.show(showID).AvailableSeats)
		assert.Equal(t, 1, f.store.bookingCount())
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	showID := f.store.addShow(1, baseTime.Add(time.Hour), 10)
	b := f.book(t, 5, showID, "A1", "A2")

	_, err := f.bookings.UpdatePaymentStatus(ctx, 5, b.ID, "  ")
	assert.ErrorIs(t, err, ErrPaymentIDMissing)

	_, err = f.bookings.UpdatePaymentStatus(ctx, 6, b.ID, "pay_1")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	paid, err := f.bookings.UpdatePaymentStatus(ctx, 5, b.ID, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentID)
	assert.Equal(t, "pay_1", *paid.PaymentID)

	stored, err := f.bookings.GetBooking(ctx, 5, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	assert.Equal(t, 8, f.store.show(showID).AvailableSeats, "payment does not move the counter")

	_, err = f.locks.LockSeats(ctx, showID, []string{"A2"})
	assert.ErrorIs(t, err, ErrSeatsBooked, "paid seats join the conflict set")

	f.events.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Type == queue.EventBookingPaid && ev.PaymentID == "pay_1" && ev.BookingID == b.ID
	}))
}

func TestBookingService_PublishFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	clock := &fakeClock{now: baseTime}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	events := &mockPublisher{}
	events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc := NewBookingService(&fakeTx{store: store}, store, store, events, WithClock(clock.Now), WithMetrics(m))
	showID := store.addShow(1, baseTime.Add(time.Hour), 3)

	b, err := svc.CreateBooking(context.Background(), 1, CreateBookingInput{ShowID: showID, NumSeats: 1, SeatNumbers: []string{"A1"}})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventPublishFailures))
}

func TestListBookings(t *testing.T) {
	f := newBookingFixture(t)
	showID := f.store.addShow(1, baseTime.Add(time.Hour), 10)
	f.book(t, 1, showID, "A1")
	f.book(t, 1, showID, "A2")
	f.book(t, 2, showID, "A3")

	out, err := f.bookings.ListBookings(context.Background(), 1, -5, 0)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	for _, b := range out {
		assert.Equal(t, uint64(1), b.UserID)
	}

	out, err = f.bookings.ListBookings(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
