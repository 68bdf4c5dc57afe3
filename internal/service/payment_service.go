package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/monitoring"
	"github.com/eventpro/ticketing/internal/queue"
)

// Currency is the only currency the gateway is driven with; multi-currency
// support is out of scope.
const Currency = "INR"

// minorUnitFactor converts major currency units to the gateway's minor
// unit (rupees to paise).
var minorUnitFactor = decimal.NewFromInt(100)

// OrderDetails is what the client needs to open the gateway's checkout:
// the order id, the amount in both units, the currency and the public
// key id.
type OrderDetails struct {
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	AmountMinor int64           `json:"amountMinor"`
	Currency    string          `json:"currency"`
	KeyID       string          `json:"keyId"`
}

// PaymentService drives the payment state machine for bookings:
// pending -> completed on a verified callback, pending -> failed (with
// compensating rollback) on a rejected one. It exclusively owns writes
// to the payment ledger. The server never marks a booking paid on
// client-asserted success; the gateway signature is always recomputed
// here.
type PaymentService struct {
	tickets   TicketStore
	payments  PaymentStore
	gateway   Gateway
	booking   *BookingService
	publisher Publisher
}

// NewPaymentService constructs a PaymentService. booking provides the
// in-process rollback invoked on signature mismatch; publisher may be
// nil to disable broker notifications.
func NewPaymentService(tickets TicketStore, payments PaymentStore, gateway Gateway, booking *BookingService, publisher Publisher) *PaymentService {
	if tickets == nil || payments == nil || gateway == nil || booking == nil {
		panic("nil dependency passed to NewPaymentService")
	}
	return &PaymentService{tickets: tickets, payments: payments, gateway: gateway, booking: booking, publisher: publisher}
}

// CreateOrder registers an external payment order for a booking's total
// amount, persists the order id on the booking and opens a pending
// ledger entry. The amount sent to the gateway is converted to minor
// currency units (500.00 becomes 50000).
func (s *PaymentService) CreateOrder(ctx context.Context, ticketID uint64) (*OrderDetails, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	amountMinor := ticket.TotalAmount.Mul(minorUnitFactor).IntPart()

	notes := map[string]interface{}{
		"ticketId": fmt.Sprintf("%d", ticket.ID),
	}
	if ticket.Event != nil {
		notes["eventTitle"] = ticket.Event.Title
	}
	orderID, err := s.gateway.CreateOrder(ctx, amountMinor, Currency, fmt.Sprintf("%d", ticket.ID), notes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.tickets.SetOrder(ctx, ticket.ID, orderID); err != nil {
		return nil, err
	}
	ledger := &model.Payment{
		TicketID: ticket.ID,
		OrderID:  orderID,
		Amount:   ticket.TotalAmount,
		Status:   model.PaymentPending,
	}
	if err := s.payments.Create(ctx, ledger); err != nil {
		return nil, err
	}

	return &OrderDetails{
		OrderID:     orderID,
		Amount:      ticket.TotalAmount,
		AmountMinor: amountMinor,
		Currency:    Currency,
		KeyID:       s.gateway.KeyID(),
	}, nil
}

// VerifyPayment validates a gateway callback. The ledger entry for
// orderID must exist; otherwise the store's not-found error is returned
// and nothing is mutated. A completed ledger is terminal: a replayed
// genuine callback is a no-op and a forged one is rejected without
// touching the booking or the ledger. While the order is still
// pending, a matching signature moves the booking and ledger to
// completed; a mismatch moves them to failed, rolls the booking back
// in-process and returns ErrSignatureMismatch.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) error {
	ledger, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	if ledger.Status == model.PaymentCompleted {
		// The order was already verified; a completed ledger is
		// immutable. A replayed genuine callback is a no-op and a forged
		// one is rejected without downgrading anything.
		if s.gateway.VerifySignature(orderID, paymentID, signature) {
			return nil
		}
		return ErrSignatureMismatch
	}

	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		monitoring.TrackPayment(model.PaymentFailed)
		now := time.Now().UTC()
		if err := s.payments.SetStatus(ctx, orderID, model.PaymentFailed, nil, &now); err != nil {
			return err
		}
		if err := s.tickets.SetPaymentStatus(ctx, ledger.TicketID, model.PaymentFailed, nil); err != nil {
			log.Printf("payment: mark ticket %d failed: %v", ledger.TicketID, err)
		}
		if err := s.booking.RollbackBooking(ctx, ledger.TicketID); err != nil {
			// The booking may already be gone (client-triggered rollback
			// raced the callback); the verification outcome stands.
			log.Printf("payment: rollback of ticket %d failed: %v", ledger.TicketID, err)
		}
		s.publishVerified(ctx, ledger.TicketID, orderID, paymentID, model.PaymentFailed)
		return ErrSignatureMismatch
	}

	now := time.Now().UTC()
	if err := s.payments.SetStatus(ctx, orderID, model.PaymentCompleted, &paymentID, &now); err != nil {
		return err
	}
	if err := s.tickets.SetPaymentStatus(ctx, ledger.TicketID, model.PaymentCompleted, &paymentID); err != nil {
		return err
	}
	monitoring.TrackPayment(model.PaymentCompleted)
	s.publishVerified(ctx, ledger.TicketID, orderID, paymentID, model.PaymentCompleted)
	return nil
}

// Status returns the most recent ledger entry for a booking.
func (s *PaymentService) Status(ctx context.Context, ticketID uint64) (*model.Payment, error) {
	return s.payments.LatestByTicket(ctx, ticketID)
}

func (s *PaymentService) publishVerified(ctx context.Context, ticketID uint64, orderID, paymentID, status string) {
	if s.publisher == nil {
		return
	}
	ev := queue.PaymentVerifiedEvent{
		TicketID:   ticketID,
		OrderID:    orderID,
		PaymentID:  paymentID,
		Status:     status,
		VerifiedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishPaymentVerified(ctx, ev); err != nil {
		log.Printf("payment: publish verification event failed: %v", err)
	}
}
