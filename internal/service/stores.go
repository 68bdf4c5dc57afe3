package service

import (
	"context"
	"time"

	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/queue"
)

// EventStore is the slice of event persistence the workflows need.
// *repository.EventRepo satisfies it.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	AdjustAvailableSeats(ctx context.Context, id uint64, delta int64) error
}

// TicketTypeStore resolves and mutates per-type capacity.
// *repository.TicketTypeRepo satisfies it.
type TicketTypeStore interface {
	GetByEventAndType(ctx context.Context, eventID uint64, code string) (*model.TicketType, error)
	AdjustQuantity(ctx context.Context, id uint64, delta int64) error
}

// TicketStore persists bookings and answers the issued-seat-label scan.
// *repository.TicketRepo satisfies it.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	GetByOrderID(ctx context.Context, orderID string) (*model.Ticket, error)
	SeatLabels(ctx context.Context, eventID uint64, code string) ([]string, error)
	SetOrder(ctx context.Context, id uint64, orderID string) error
	SetPaymentStatus(ctx context.Context, id uint64, status string, paymentID *string) error
	Delete(ctx context.Context, id uint64) error
}

// PaymentStore persists the payment ledger.
// *repository.PaymentRepo satisfies it.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	LatestByTicket(ctx context.Context, ticketID uint64) (*model.Payment, error)
	SetStatus(ctx context.Context, orderID, status string, paymentID *string, verifiedAt *time.Time) error
}

// Gateway abstracts the external payment provider: order creation for
// the client-side checkout handoff and server-side signature
// verification of its callback.
type Gateway interface {
	// CreateOrder registers a charge of amountMinor (minor currency
	// units) and returns the provider's opaque order id.
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]interface{}) (string, error)
	// KeyID returns the public key the client needs to open the
	// provider's checkout.
	KeyID() string
	// VerifySignature reports whether signature matches the HMAC the
	// provider computes over orderID and paymentID.
	VerifySignature(orderID, paymentID, signature string) bool
}

// Publisher delivers domain events to the message broker. Publish
// failures are logged by implementations and never fail the request
// that triggered them; a nil Publisher disables publishing.
type Publisher interface {
	PublishTicketBooked(ctx context.Context, ev queue.TicketBookedEvent) error
	PublishPaymentVerified(ctx context.Context, ev queue.PaymentVerifiedEvent) error
}
