package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a bookable happening with a finite seat inventory.  The
// AvailableSeats field is the aggregate remaining capacity across all of
// the event's ticket types; it is decremented by bookings and restored
// by compensating rollbacks, and must never go below zero.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – display title of the event.
//  Description    – free-form description shown on the event page.
//  Date           – event date as supplied by the organizer (opaque string).
//  Time           – event start time as supplied by the organizer.
//  Location       – venue name or address.
//  Price          – base admission price; ticket types carry their own prices.
//  Image          – public URL of the event image served by the asset store.
//  ImageID        – asset store file identifier used for deletion.
//  Category       – coarse classification used by client-side filters.
//  AvailableSeats – remaining aggregate capacity.
type Event struct {
	ID             uint64          `json:"id"`             // events.id
	Title          string          `json:"title"`          // events.title
	Description    string          `json:"description"`    // events.description
	Date           string          `json:"date"`           // events.date
	Time           string          `json:"time"`           // events.time
	Location       string          `json:"location"`       // events.location
	Price          decimal.Decimal `json:"price"`          // events.price
	Image          string          `json:"image"`          // events.image
	ImageID        string          `json:"imageId"`        // events.image_id
	Category       string          `json:"category"`       // events.category
	AvailableSeats int64           `json:"availableSeats"` // events.available_seats
	CreatedAt      time.Time       `json:"createdAt"`      // events.created_at
	UpdatedAt      time.Time       `json:"updatedAt"`      // events.updated_at
}
