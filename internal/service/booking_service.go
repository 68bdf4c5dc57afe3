package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/monitoring"
	"github.com/eventpro/ticketing/internal/queue"
)

// BookingItem is one requested line of a booking: a ticket type code
// and how many units of it. Prices are never accepted from the client;
// the service snapshots them from the ticket type record.
type BookingItem struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// BookingService orchestrates availability checks, seat allocation,
// capacity decrement and booking creation as one logical unit of work,
// and provides the compensating rollback used by the payment workflow.
//
// Concurrency contract: all capacity reads and writes for one event run
// under that event's mutex, so two concurrent bookings for the same
// ticket type cannot both pass the capacity check or mint the same seat
// label. The stores add conditional decrements and a seat-label
// uniqueness constraint underneath as backstops for out-of-process
// writers.
type BookingService struct {
	events    EventStore
	types     TicketTypeStore
	tickets   TicketStore
	publisher Publisher

	locks sync.Map // event id -> *sync.Mutex
}

// NewBookingService constructs a BookingService. publisher may be nil
// to disable broker notifications.
func NewBookingService(events EventStore, types TicketTypeStore, tickets TicketStore, publisher Publisher) *BookingService {
	if events == nil || types == nil || tickets == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{events: events, types: types, tickets: tickets, publisher: publisher}
}

// eventLock returns the mutex serializing bookings for one event.
func (s *BookingService) eventLock(eventID uint64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(eventID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// CreateBooking validates the requested line items against the event's
// ticket types, allocates non-colliding seat labels, decrements
// capacity and persists the booking. The returned ticket has its
// owning event resolved and its unit prices snapshotted from the
// ticket type records. totalAmount is the client's claimed total; it
// is checked against the server-computed sum and rejected on mismatch.
//
// Validation failures leave no mutation behind. A storage failure in
// the middle of the mutation sequence can leave capacity partially
// decremented; the explicit rollback endpoint is the recovery path.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, eventID uint64, items []BookingItem, totalAmount decimal.Decimal) (*model.Ticket, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one ticket is required", ErrValidation)
	}
	for _, it := range items {
		if it.Type == "" || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: every line item needs a type and a positive quantity", ErrValidation)
		}
	}

	start := time.Now()
	mu := s.eventLock(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// First pass: resolve every requested type and check capacity before
	// touching anything, so validation failures cannot leave partial
	// decrements behind.
	resolved := make([]*model.TicketType, len(items))
	requested := make(map[string]int64, len(items))
	serverTotal := decimal.Zero
	for i, it := range items {
		tt, err := s.types.GetByEventAndType(ctx, eventID, it.Type)
		if err != nil {
			return nil, err
		}
		// A type code may appear on several line items; capacity is
		// checked against the combined quantity.
		requested[it.Type] += int64(it.Quantity)
		if tt.AvailableQuantity < requested[it.Type] {
			monitoring.TrackBookingFailure("capacity")
			return nil, fmt.Errorf("%w: %s", ErrCapacityExceeded, it.Type)
		}
		resolved[i] = tt
		serverTotal = serverTotal.Add(tt.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !totalAmount.IsZero() && !totalAmount.Equal(serverTotal) {
		return nil, fmt.Errorf("%w: totalAmount %s does not match priced total %s", ErrValidation, totalAmount, serverTotal)
	}

	// Second pass: mint seat labels and decrement per-type capacity in
	// request order so allocations are deterministic for tests.
	ticket := &model.Ticket{
		UserID:        userID,
		EventID:       eventID,
		TotalAmount:   serverTotal,
		PaymentStatus: model.PaymentPending,
	}
	totalQuantity := 0
	taken := make(map[string][]string, len(items))
	for i, it := range items {
		tt := resolved[i]
		existing, ok := taken[it.Type]
		if !ok {
			existing, err = s.tickets.SeatLabels(ctx, eventID, it.Type)
			if err != nil {
				return nil, err
			}
		}
		labels := AllocateSeatLabels(existing, it.Type, it.Quantity)
		// Labels minted for earlier line items of the same type are not
		// persisted yet; carry them in the taken set so a later line
		// cannot re-mint them.
		taken[it.Type] = append(existing, labels...)
		if err := s.types.AdjustQuantity(ctx, tt.ID, -int64(it.Quantity)); err != nil {
			return nil, err
		}
		ticket.Items = append(ticket.Items, model.TicketItem{
			Type:       it.Type,
			Quantity:   it.Quantity,
			Price:      tt.Price,
			SeatLabels: labels,
		})
		totalQuantity += it.Quantity
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.events.AdjustAvailableSeats(ctx, eventID, -int64(totalQuantity)); err != nil {
		return nil, err
	}
	event.AvailableSeats -= int64(totalQuantity)
	ticket.Event = event

	monitoring.TrackBooking(eventID, totalQuantity)
	monitoring.SetAvailableSeats(eventID, event.AvailableSeats)
	monitoring.ObserveBookingDuration(time.Since(start))
	s.publishBooked(ctx, ticket, event)
	return ticket, nil
}

// RollbackBooking restores the capacity a booking consumed and deletes
// the booking. It is the exact inverse of CreateBooking on the capacity
// fields. Rollback is only permitted while the booking is pending or
// failed; a completed booking returns ErrRollbackNotAllowed. A second
// rollback of the same booking finds no ticket and fails cleanly with
// the store's not-found error instead of double-crediting capacity.
func (s *BookingService) RollbackBooking(ctx context.Context, ticketID uint64) error {
	// Resolve the event first so the rollback runs under the same lock
	// as bookings for that event.
	probe, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	mu := s.eventLock(probe.EventID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock: a concurrent rollback may have deleted the
	// ticket between the probe and acquiring the lock.
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.PaymentStatus == model.PaymentCompleted {
		return ErrRollbackNotAllowed
	}

	// Delete before crediting capacity back so a racing second call
	// observes not-found rather than a window with restored capacity
	// and a live ticket.
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return err
	}
	totalQuantity := 0
	for _, it := range ticket.Items {
		tt, err := s.types.GetByEventAndType(ctx, ticket.EventID, it.Type)
		if err != nil {
			// The type may have been removed since booking; capacity for
			// it cannot be restored, mirror of the reference behavior.
			log.Printf("booking: rollback of ticket %d skipped type %q: %v", ticketID, it.Type, err)
			totalQuantity += it.Quantity
			continue
		}
		if err := s.types.AdjustQuantity(ctx, tt.ID, int64(it.Quantity)); err != nil {
			return err
		}
		totalQuantity += it.Quantity
	}
	if err := s.events.AdjustAvailableSeats(ctx, ticket.EventID, int64(totalQuantity)); err != nil {
		return err
	}
	monitoring.TrackRollback(ticket.EventID, totalQuantity)
	return nil
}

// publishBooked emits a TicketBookedEvent; failures are logged and
// never fail the booking.
func (s *BookingService) publishBooked(ctx context.Context, t *model.Ticket, ev *model.Event) {
	if s.publisher == nil {
		return
	}
	seats := make([]string, 0, t.TotalQuantity())
	for _, it := range t.Items {
		seats = append(seats, it.SeatLabels...)
	}
	msg := queue.TicketBookedEvent{
		TicketID:    t.ID,
		UserID:      t.UserID,
		EventID:     t.EventID,
		EventTitle:  ev.Title,
		SeatLabels:  seats,
		TotalAmount: t.TotalAmount.String(),
		BookedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishTicketBooked(ctx, msg); err != nil {
		log.Printf("booking: publish ticket booked failed: %v", err)
	}
}
