// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// Queue names used for both publishing and consuming.
const (
	TicketBookedQueue    = "ticket.booked"
	PaymentVerifiedQueue = "payment.verified"
)

// TicketBookedEvent is published after a booking has been persisted and
// capacity decremented. It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type TicketBookedEvent struct {
	TicketID    uint64   `json:"ticket_id"`
	UserID      string   `json:"user_id"`
	EventID     uint64   `json:"event_id"`
	EventTitle  string   `json:"event_title"`
	SeatLabels  []string `json:"seats"`
	TotalAmount string   `json:"total_amount"`
	BookedAt    string   `json:"booked_at"`
}

// PaymentVerifiedEvent is published once a gateway callback has been
// verified, for both outcomes. Status is "completed" or "failed".
type PaymentVerifiedEvent struct {
	TicketID   uint64 `json:"ticket_id"`
	OrderID    string `json:"order_id"`
	PaymentID  string `json:"payment_id,omitempty"`
	Status     string `json:"status"`
	VerifiedAt string `json:"verified_at"`
}
