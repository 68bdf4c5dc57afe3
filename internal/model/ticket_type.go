package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a named admission category for an event (e.g. "vip",
// "general") with its own price, perks and capacity.  The (EventID, Type)
// pair is unique per event.  AvailableQuantity is mutated only by the
// booking workflow (decrement) and the rollback workflow (increment) and
// must never go below zero.
//
// Fields:
//  ID                – primary key identifier.
//  EventID           – owning event.
//  Type              – short code unique within the event; seat labels are
//                      derived from its uppercase form.
//  Name              – human-readable display name.
//  Price             – price per unit for this category.
//  Benefits          – ordered list of perks included with the category.
//  AvailableQuantity – remaining units that can still be booked.
type TicketType struct {
	ID                uint64          `json:"id"`                // ticket_types.id
	EventID           uint64          `json:"eventId"`           // ticket_types.event_id
	Type              string          `json:"type"`              // ticket_types.type_code
	Name              string          `json:"name"`              // ticket_types.name
	Price             decimal.Decimal `json:"price"`             // ticket_types.price
	Benefits          []string        `json:"benefits"`          // ticket_types.benefits (JSON)
	AvailableQuantity int64           `json:"availableQuantity"` // ticket_types.available_quantity
	CreatedAt         time.Time       `json:"createdAt"`         // ticket_types.created_at
	UpdatedAt         time.Time       `json:"updatedAt"`         // ticket_types.updated_at
}
