package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/repository"
)

func testFixtures() (*fakeEventStore, *fakeTypeStore, *fakeTicketStore, *fakePublisher, *BookingService) {
	events := newFakeEventStore(&model.Event{
		ID:             1,
		Title:          "Summer Beats",
		AvailableSeats: 100,
	})
	types := newFakeTypeStore(
		&model.TicketType{ID: 1, EventID: 1, Type: "vip", Name: "VIP", Price: decimal.NewFromInt(250), AvailableQuantity: 10},
		&model.TicketType{ID: 2, EventID: 1, Type: "general", Name: "General", Price: decimal.NewFromInt(100), AvailableQuantity: 50},
	)
	tickets := newFakeTicketStore()
	pub := &fakePublisher{}
	svc := NewBookingService(events, types, tickets, pub)
	return events, types, tickets, pub, svc
}

func TestCreateBookingAllocatesSeatsAndDecrements(t *testing.T) {
	events, types, _, pub, svc := testFixtures()

	ticket, err := svc.CreateBooking(context.Background(), "user-1", 1, []BookingItem{
		{Type: "vip", Quantity: 2},
		{Type: "general", Quantity: 1},
	}, decimal.Zero)
	require.NoError(t, err)

	require.Len(t, ticket.Items, 2)
	assert.Equal(t, []string{"VIP-1", "VIP-2"}, ticket.Items[0].SeatLabels)
	assert.Equal(t, []string{"GENERAL-1"}, ticket.Items[1].SeatLabels)
	assert.True(t, ticket.TotalAmount.Equal(decimal.NewFromInt(600)), "2*250 + 1*100, got %s", ticket.TotalAmount)
	assert.Equal(t, model.PaymentPending, ticket.PaymentStatus)
	require.NotNil(t, ticket.Event)
	assert.Equal(t, "Summer Beats", ticket.Event.Title)

	assert.Equal(t, int64(8), types.quantity(1))
	assert.Equal(t, int64(49), types.quantity(2))
	assert.Equal(t, int64(97), events.seats(1))

	require.Len(t, pub.booked, 1)
	assert.Equal(t, ticket.ID, pub.booked[0].TicketID)
	assert.ElementsMatch(t, []string{"VIP-1", "VIP-2", "GENERAL-1"}, pub.booked[0].SeatLabels)
}

func TestCreateBookingContinuesSeatSequence(t *testing.T) {
	_, _, _, _, svc := testFixtures()
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, "user-1", 1, []BookingItem{{Type: "vip", Quantity: 2}}, decimal.Zero)
	require.NoError(t, err)

	second, err := svc.CreateBooking(ctx, "user-2", 1, []BookingItem{{Type: "vip", Quantity: 2}}, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIP-3", "VIP-4"}, second.Items[0].SeatLabels)
}

func TestCreateBookingRepeatedTypeMintsDistinctSeats(t *testing.T) {
	events, types, _, _, svc := testFixtures()

	ticket, err := svc.CreateBooking(context.Background(), "user-1", 1, []BookingItem{
		{Type: "vip", Quantity: 1},
		{Type: "vip", Quantity: 2},
	}, decimal.Zero)
	require.NoError(t, err)

	// The second vip line must continue the sequence started by the
	// first even though nothing is persisted between them.
	require.Len(t, ticket.Items, 2)
	assert.Equal(t, []string{"VIP-1"}, ticket.Items[0].SeatLabels)
	assert.Equal(t, []string{"VIP-2", "VIP-3"}, ticket.Items[1].SeatLabels)

	assert.Equal(t, int64(7), types.quantity(1))
	assert.Equal(t, int64(97), events.seats(1))
}

func TestCreateBookingRepeatedTypeChecksCombinedCapacity(t *testing.T) {
	events, types, _, _, svc := testFixtures()

	// Each line fits on its own but together they exceed the 10 vip
	// seats, so the whole request is refused before any decrement.
	_, err := svc.CreateBooking(context.Background(), "user-1", 1, []BookingItem{
		{Type: "vip", Quantity: 6},
		{Type: "vip", Quantity: 6},
	}, decimal.Zero)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	assert.Equal(t, int64(10), types.quantity(1))
	assert.Equal(t, int64(100), events.seats(1))
}

func TestCreateBookingCapacityExceeded(t *testing.T) {
	events, types, _, _, svc := testFixtures()

	_, err := svc.CreateBooking(context.Background(), "user-1", 1, []BookingItem{
		{Type: "general", Quantity: 5},
		{Type: "vip", Quantity: 11},
	}, decimal.Zero)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// The general line must not have been decremented by the failed request.
	assert.Equal(t, int64(50), types.quantity(2))
	assert.Equal(t, int64(10), types.quantity(1))
	assert.Equal(t, int64(100), events.seats(1))
}

func TestCreateBookingValidation(t *testing.T) {
	_, _, _, _, svc := testFixtures()
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, "", 1, []BookingItem{{Type: "vip", Quantity: 1}}, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateBooking(ctx, "user-1", 1, nil, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateBooking(ctx, "user-1", 1, []BookingItem{{Type: "vip", Quantity: 0}}, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateBooking(ctx, "user-1", 1, []BookingItem{{Type: "unknown", Quantity: 1}}, decimal.Zero)
	assert.ErrorIs(t, err, repository.ErrTicketTypeNotFound)
}

func TestCreateBookingRejectsMismatchedTotal(t *testing.T) {
	_, _, _, _, svc := testFixtures()

	_, err := svc.CreateBooking(context.Background(), "user-1", 1,
		[]BookingItem{{Type: "vip", Quantity: 1}}, decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrValidation)

	// A matching claimed total is accepted.
	_, err = svc.CreateBooking(context.Background(), "user-1", 1,
		[]BookingItem{{Type: "vip", Quantity: 1}}, decimal.NewFromInt(250))
	require.NoError(t, err)
}

func TestRollbackBookingRestoresCapacity(t *testing.T) {
	events, types, tickets, _, svc := testFixtures()
	ctx := context.Background()

	ticket, err := svc.CreateBooking(ctx, "user-1", 1, []BookingItem{
		{Type: "vip", Quantity: 2},
		{Type: "general", Quantity: 3},
	}, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, svc.RollbackBooking(ctx, ticket.ID))

	assert.Equal(t, int64(10), types.quantity(1))
	assert.Equal(t, int64(50), types.quantity(2))
	assert.Equal(t, int64(100), events.seats(1))

	_, err = tickets.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)

	// Freed seat labels are reissued to the next booking.
	next, err := svc.CreateBooking(ctx, "user-2", 1, []BookingItem{{Type: "vip", Quantity: 1}}, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIP-1"}, next.Items[0].SeatLabels)
}

func TestRollbackBookingTwiceFailsCleanly(t *testing.T) {
	events, types, _, _, svc := testFixtures()
	ctx := context.Background()

	ticket, err := svc.CreateBooking(ctx, "user-1", 1, []BookingItem{{Type: "vip", Quantity: 2}}, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, svc.RollbackBooking(ctx, ticket.ID))
	err = svc.RollbackBooking(ctx, ticket.ID)
	require.ErrorIs(t, err, repository.ErrTicketNotFound)

	// Capacity must not be credited twice.
	assert.Equal(t, int64(10), types.quantity(1))
	assert.Equal(t, int64(100), events.seats(1))
}

func TestRollbackBookingRefusedWhenCompleted(t *testing.T) {
	_, _, tickets, _, svc := testFixtures()
	ctx := context.Background()

	ticket, err := svc.CreateBooking(ctx, "user-1", 1, []BookingItem{{Type: "vip", Quantity: 1}}, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, tickets.SetPaymentStatus(ctx, ticket.ID, model.PaymentCompleted, nil))

	err = svc.RollbackBooking(ctx, ticket.ID)
	assert.ErrorIs(t, err, ErrRollbackNotAllowed)
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	events := newFakeEventStore(&model.Event{ID: 1, Title: "Finals", AvailableSeats: 3})
	types := newFakeTypeStore(
		&model.TicketType{ID: 1, EventID: 1, Type: "vip", Name: "VIP", Price: decimal.NewFromInt(300), AvailableQuantity: 3},
	)
	tickets := newFakeTicketStore()
	svc := NewBookingService(events, types, tickets, nil)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), "user", 1,
				[]BookingItem{{Type: "vip", Quantity: 1}}, decimal.Zero)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, int64(0), types.quantity(1))
	assert.Equal(t, int64(0), events.seats(1))

	// All three winners must hold distinct labels.
	labels, err := tickets.SeatLabels(context.Background(), 1, "vip")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"VIP-1", "VIP-2", "VIP-3"}, labels)
}
