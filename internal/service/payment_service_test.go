package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/repository"
)

func paymentFixtures(t *testing.T) (*fakeEventStore, *fakeTypeStore, *fakeTicketStore, *fakePaymentStore, *fakeGateway, *PaymentService, *model.Ticket) {
	t.Helper()
	events, types, tickets, _, booking := testFixtures()
	payments := newFakePaymentStore()
	gw := &fakeGateway{validSig: "good-signature"}
	svc := NewPaymentService(tickets, payments, gw, booking, nil)

	ticket, err := booking.CreateBooking(context.Background(), "user-1", 1,
		[]BookingItem{{Type: "vip", Quantity: 2}}, decimal.Zero)
	require.NoError(t, err)
	return events, types, tickets, payments, gw, svc, ticket
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	_, _, tickets, payments, _, svc, ticket := paymentFixtures(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, "order_1", order.OrderID)
	assert.True(t, order.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, int64(50000), order.AmountMinor)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", order.KeyID)

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, "order_1", *stored.OrderID)

	ledger, err := payments.GetByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, ledger.Status)
	assert.Equal(t, ticket.ID, ledger.TicketID)
}

func TestCreateOrderUnknownTicket(t *testing.T) {
	_, _, _, _, _, svc, _ := paymentFixtures(t)
	_, err := svc.CreateOrder(context.Background(), 9999)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	_, _, tickets, _, gw, svc, ticket := paymentFixtures(t)
	gw.fail = true

	_, err := svc.CreateOrder(context.Background(), ticket.ID)
	require.ErrorIs(t, err, ErrGateway)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OrderID)
}

func TestVerifyPaymentSuccess(t *testing.T) {
	_, _, tickets, payments, _, svc, ticket := paymentFixtures(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, ticket.ID)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyPayment(ctx, order.OrderID, "pay_1", "good-signature"))

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, "pay_1", *stored.PaymentID)

	ledger, err := payments.GetByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, ledger.Status)
	assert.NotNil(t, ledger.VerifiedAt)
}

func TestVerifyPaymentIdempotentOnReplay(t *testing.T) {
	_, _, tickets, _, _, svc, ticket := paymentFixtures(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, ticket.ID)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyPayment(ctx, order.OrderID, "pay_1", "good-signature"))

	// A replayed callback succeeds without touching anything.
	require.NoError(t, svc.VerifyPayment(ctx, order.OrderID, "pay_1", "good-signature"))

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, stored.PaymentStatus)
}

func TestVerifyPaymentForgedCallbackCannotDowngradeCompleted(t *testing.T) {
	_, _, tickets, payments, _, svc, ticket := paymentFixtures(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, ticket.ID)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyPayment(ctx, order.OrderID, "pay_1", "good-signature"))

	// A forged signature for an already-completed order is rejected
	// without flipping the booking or the ledger back to failed.
	err = svc.VerifyPayment(ctx, order.OrderID, "pay_1", "forged")
	require.ErrorIs(t, err, ErrSignatureMismatch)

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, stored.PaymentStatus)

	ledger, err := payments.GetByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, ledger.Status)
	assert.NotNil(t, ledger.VerifiedAt)
}

func TestVerifyPaymentMismatchRollsBackBooking(t *testing.T) {
	events, types, tickets, payments, _, svc, ticket := paymentFixtures(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, ticket.ID)
	require.NoError(t, err)

	err = svc.VerifyPayment(ctx, order.OrderID, "pay_1", "forged")
	require.ErrorIs(t, err, ErrSignatureMismatch)

	// The booking is gone and its capacity restored.
	_, err = tickets.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
	assert.Equal(t, int64(10), types.quantity(1))
	assert.Equal(t, int64(100), events.seats(1))

	// The ledger entry survives the ticket for audit.
	ledger, err := payments.GetByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, ledger.Status)
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	_, _, tickets, _, _, svc, ticket := paymentFixtures(t)

	err := svc.VerifyPayment(context.Background(), "order_missing", "pay_1", "good-signature")
	require.ErrorIs(t, err, repository.ErrPaymentNotFound)

	// Nothing was mutated for the unrelated booking.
	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, stored.PaymentStatus)
}

func TestStatusReturnsLatestLedgerEntry(t *testing.T) {
	_, _, _, _, _, svc, ticket := paymentFixtures(t)
	ctx := context.Background()

	_, err := svc.Status(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrPaymentNotFound)

	order, err := svc.CreateOrder(ctx, ticket.ID)
	require.NoError(t, err)

	p, err := svc.Status(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, p.OrderID)
	assert.Equal(t, model.PaymentPending, p.Status)
}
