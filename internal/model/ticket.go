package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment status values for a ticket booking.  A booking starts out
// pending, becomes completed exactly once after a verified gateway
// callback, or failed when signature verification rejects the callback.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// TicketItem is one line of a booking: a quantity of a single ticket
// type together with the seat labels assigned to each unit.  Price is a
// snapshot of the ticket type's price at booking time, not a live
// reference.  len(SeatLabels) always equals Quantity.
type TicketItem struct {
	Type       string          `json:"type"`        // ticket_items.type_code
	Quantity   int             `json:"quantity"`    // ticket_items.quantity
	Price      decimal.Decimal `json:"price"`       // ticket_items.unit_price
	SeatLabels []string        `json:"seatNumbers"` // ticket_seats.seat_label rows
}

// Ticket is a persisted booking covering one or more ticket types for a
// single event.  UserID is the opaque identifier supplied by the external
// identity provider.  OrderID and PaymentID are references into the
// payment gateway, populated by the payment workflow.
//
// Lifecycle: created by the booking service, status-transitioned by the
// payment service, deleted by the rollback workflow on verified payment
// failure or an explicit rollback request.
type Ticket struct {
	ID            uint64          `json:"id"`                        // tickets.id
	UserID        string          `json:"userId"`                    // tickets.user_id
	EventID       uint64          `json:"eventId"`                   // tickets.event_id
	Items         []TicketItem    `json:"tickets"`                   // ticket_items rows
	TotalAmount   decimal.Decimal `json:"totalAmount"`               // tickets.total_amount
	PaymentStatus string          `json:"paymentStatus"`             // tickets.payment_status
	OrderID       *string         `json:"razorpayOrderId,omitempty"` // tickets.order_id (nullable)
	PaymentID     *string         `json:"razorpayPaymentId,omitempty"` // tickets.payment_id (nullable)
	CreatedAt     time.Time       `json:"createdAt"`                 // tickets.created_at
	UpdatedAt     time.Time       `json:"updatedAt"`                 // tickets.updated_at

	// Event carries the resolved owning event when the caller asked for it
	// (booking responses and ticket detail endpoints).  Not persisted on
	// the tickets table.
	Event *Event `json:"event,omitempty"`
}

// TotalQuantity returns the number of seats covered by the booking
// across all line items.
func (t *Ticket) TotalQuantity() int {
	n := 0
	for _, it := range t.Items {
		n += it.Quantity
	}
	return n
}
