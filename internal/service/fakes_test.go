package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventpro/ticketing/internal/model"
	"github.com/eventpro/ticketing/internal/queue"
	"github.com/eventpro/ticketing/internal/repository"
)

// In-memory store fakes. They return the same sentinel errors as the
// MySQL repositories and guard their maps with a mutex so the
// concurrency tests can hammer them from many goroutines.

type fakeEventStore struct {
	mu     sync.Mutex
	events map[uint64]*model.Event
}

func newFakeEventStore(events ...*model.Event) *fakeEventStore {
	s := &fakeEventStore{events: make(map[uint64]*model.Event)}
	for _, ev := range events {
		cp := *ev
		s.events[ev.ID] = &cp
	}
	return s
}

func (s *fakeEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *fakeEventStore) AdjustAvailableSeats(_ context.Context, id uint64, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	if ev.AvailableSeats+delta < 0 {
		return repository.ErrInsufficientQuantity
	}
	ev.AvailableSeats += delta
	return nil
}

func (s *fakeEventStore) seats(id uint64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id].AvailableSeats
}

type fakeTypeStore struct {
	mu    sync.Mutex
	types map[uint64]*model.TicketType
}

func newFakeTypeStore(types ...*model.TicketType) *fakeTypeStore {
	s := &fakeTypeStore{types: make(map[uint64]*model.TicketType)}
	for _, tt := range types {
		cp := *tt
		s.types[tt.ID] = &cp
	}
	return s
}

func (s *fakeTypeStore) GetByEventAndType(_ context.Context, eventID uint64, code string) (*model.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tt := range s.types {
		if tt.EventID == eventID && tt.Type == code {
			cp := *tt
			return &cp, nil
		}
	}
	return nil, repository.ErrTicketTypeNotFound
}

func (s *fakeTypeStore) AdjustQuantity(_ context.Context, id uint64, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tt, ok := s.types[id]
	if !ok {
		return repository.ErrTicketTypeNotFound
	}
	if tt.AvailableQuantity+delta < 0 {
		return repository.ErrInsufficientQuantity
	}
	tt.AvailableQuantity += delta
	return nil
}

func (s *fakeTypeStore) quantity(id uint64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[id].AvailableQuantity
}

type fakeTicketStore struct {
	mu      sync.Mutex
	nextID  uint64
	tickets map[uint64]*model.Ticket
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: make(map[uint64]*model.Ticket)}
}

func copyTicket(t *model.Ticket) *model.Ticket {
	cp := *t
	cp.Items = make([]model.TicketItem, len(t.Items))
	for i, it := range t.Items {
		cp.Items[i] = it
		cp.Items[i].SeatLabels = append([]string(nil), it.SeatLabels...)
	}
	return &cp
}

func (s *fakeTicketStore) Create(_ context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	s.tickets[t.ID] = copyTicket(t)
	return nil
}

func (s *fakeTicketStore) GetByID(_ context.Context, id uint64) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	return copyTicket(t), nil
}

func (s *fakeTicketStore) GetByOrderID(_ context.Context, orderID string) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.OrderID != nil && *t.OrderID == orderID {
			return copyTicket(t), nil
		}
	}
	return nil, repository.ErrTicketNotFound
}

func (s *fakeTicketStore) SeatLabels(_ context.Context, eventID uint64, code string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var labels []string
	for _, t := range s.tickets {
		if t.EventID != eventID {
			continue
		}
		for _, it := range t.Items {
			if it.Type == code {
				labels = append(labels, it.SeatLabels...)
			}
		}
	}
	return labels, nil
}

func (s *fakeTicketStore) SetOrder(_ context.Context, id uint64, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.OrderID = &orderID
	return nil
}

func (s *fakeTicketStore) SetPaymentStatus(_ context.Context, id uint64, status string, paymentID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.PaymentStatus = status
	if paymentID != nil {
		t.PaymentID = paymentID
	}
	return nil
}

func (s *fakeTicketStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return repository.ErrTicketNotFound
	}
	delete(s.tickets, id)
	return nil
}

type fakePaymentStore struct {
	mu       sync.Mutex
	byOrder  map[string]*model.Payment
	sequence uint64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byOrder: make(map[string]*model.Payment)}
}

func (s *fakePaymentStore) Create(_ context.Context, p *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byOrder[p.OrderID]; ok {
		return repository.ErrDuplicate
	}
	s.sequence++
	p.ID = s.sequence
	p.CreatedAt = time.Now().UTC()
	cp := *p
	s.byOrder[p.OrderID] = &cp
	return nil
}

func (s *fakePaymentStore) GetByOrderID(_ context.Context, orderID string) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byOrder[orderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePaymentStore) LatestByTicket(_ context.Context, ticketID uint64) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.Payment
	for _, p := range s.byOrder {
		if p.TicketID != ticketID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, repository.ErrPaymentNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *fakePaymentStore) SetStatus(_ context.Context, orderID, status string, paymentID *string, verifiedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byOrder[orderID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.Status = status
	if paymentID != nil {
		p.PaymentID = paymentID
	}
	if verifiedAt != nil {
		p.VerifiedAt = verifiedAt
	}
	return nil
}

// fakeGateway accepts exactly one signature value and mints sequential
// order ids.
type fakeGateway struct {
	mu       sync.Mutex
	orders   int
	validSig string
	fail     bool
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return "", fmt.Errorf("gateway down")
	}
	g.orders++
	return fmt.Sprintf("order_%d", g.orders), nil
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == g.validSig
}

// fakePublisher records published events.
type fakePublisher struct {
	mu       sync.Mutex
	booked   []queue.TicketBookedEvent
	verified []queue.PaymentVerifiedEvent
}

func (p *fakePublisher) PublishTicketBooked(_ context.Context, ev queue.TicketBookedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.booked = append(p.booked, ev)
	return nil
}

func (p *fakePublisher) PublishPaymentVerified(_ context.Context, ev queue.PaymentVerifiedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verified = append(p.verified, ev)
	return nil
}
