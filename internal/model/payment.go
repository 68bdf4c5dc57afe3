package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a ledger entry for one gateway order created against a
// booking.  OrderID is unique across all payments.  A row is created
// when a gateway order is requested and updated exactly once by the
// verification step.  The payment service exclusively owns writes.
//
// Fields:
//  ID         – primary key identifier.
//  TicketID   – booking the order was created for.
//  OrderID    – gateway order identifier (unique).
//  PaymentID  – gateway payment identifier, set on verification.
//  Amount     – order amount in major currency units.
//  Status     – pending, completed or failed.
//  VerifiedAt – when the gateway callback was verified (nullable).
type Payment struct {
	ID         uint64          `json:"id"`                  // payments.id
	TicketID   uint64          `json:"ticketId"`            // payments.ticket_id
	OrderID    string          `json:"orderId"`             // payments.order_id
	PaymentID  *string         `json:"paymentId,omitempty"` // payments.payment_id (nullable)
	Amount     decimal.Decimal `json:"amount"`              // payments.amount
	Status     string          `json:"status"`              // payments.status
	VerifiedAt *time.Time      `json:"verifiedAt,omitempty"` // payments.verified_at (nullable)
	CreatedAt  time.Time       `json:"createdAt"`           // payments.created_at
}
