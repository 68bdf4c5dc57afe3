package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/eventpro/ticketing/internal/model"
)

// ErrTicketNotFound indicates that a booking was not located in the DB.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo manages persistence for bookings. A booking spans three
// tables: tickets (header), ticket_items (one row per line item) and
// ticket_seats (one row per issued seat label). Seat rows carry the
// (event_id, type_code) scope so label uniqueness is enforced by a DB
// constraint across all bookings of an event.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// Create persists a booking together with its line items and seat
// labels in a single transaction. The generated ID and timestamps are
// populated on the given model. A seat label collision surfaces as
// ErrDuplicate, which the booking service treats as a retryable
// allocation race.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO tickets (user_id, event_id, total_amount, payment_status) VALUES (?, ?, ?, ?)`
	status := t.PaymentStatus
	if status == "" {
		status = model.PaymentPending
	}
	res, err := tx.ExecContext(ctx, q, t.UserID, t.EventID, t.TotalAmount, status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.PaymentStatus = status

	const itemQ = `INSERT INTO ticket_items (ticket_id, type_code, quantity, unit_price) VALUES (?, ?, ?, ?)`
	const seatQ = `INSERT INTO ticket_seats (item_id, event_id, type_code, seat_label) VALUES (?, ?, ?, ?)`
	for _, it := range t.Items {
		ires, err := tx.ExecContext(ctx, itemQ, t.ID, it.Type, it.Quantity, it.Price)
		if err != nil {
			return err
		}
		itemID, err := ires.LastInsertId()
		if err != nil {
			return err
		}
		for _, label := range it.SeatLabels {
			if _, err := tx.ExecContext(ctx, seatQ, itemID, t.EventID, it.Type, label); err != nil {
				if strings.Contains(strings.ToLower(err.Error()), "1062") {
					return ErrDuplicate
				}
				return err
			}
		}
	}

	const sel = `SELECT created_at, updated_at FROM tickets WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// loadItems populates the line items and seat labels for each ticket in
// the map, issuing one query per table across all requested ids.
func (r *TicketRepo) loadItems(ctx context.Context, byID map[uint64]*model.Ticket) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]any, 0, len(byID))
	placeholders := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
		placeholders = append(placeholders, "?")
	}
	in := strings.Join(placeholders, ",")

	itemQ := `SELECT id, ticket_id, type_code, quantity, unit_price FROM ticket_items
			  WHERE ticket_id IN (` + in + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, itemQ, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	// Remember which (ticket, item index) each item row landed at so the
	// seat query below can append labels to the right line item.
	itemIndex := make(map[uint64][2]uint64) // item id -> (ticket id, index)
	for rows.Next() {
		var itemID, ticketID uint64
		var it model.TicketItem
		if err := rows.Scan(&itemID, &ticketID, &it.Type, &it.Quantity, &it.Price); err != nil {
			return err
		}
		it.SeatLabels = []string{}
		t := byID[ticketID]
		itemIndex[itemID] = [2]uint64{ticketID, uint64(len(t.Items))}
		t.Items = append(t.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	seatQ := `SELECT s.item_id, s.seat_label FROM ticket_seats s
			  JOIN ticket_items i ON i.id = s.item_id
			  WHERE i.ticket_id IN (` + in + `) ORDER BY s.id`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return err
	}
	defer srows.Close()
	for srows.Next() {
		var itemID uint64
		var label string
		if err := srows.Scan(&itemID, &label); err != nil {
			return err
		}
		loc, ok := itemIndex[itemID]
		if !ok {
			continue
		}
		t := byID[loc[0]]
		t.Items[loc[1]].SeatLabels = append(t.Items[loc[1]].SeatLabels, label)
	}
	return srows.Err()
}

const ticketColumns = `id, user_id, event_id, total_amount, payment_status, order_id, payment_id, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	var orderID, paymentID sql.NullString
	err := row.Scan(
		&t.ID, &t.UserID, &t.EventID, &t.TotalAmount, &t.PaymentStatus,
		&orderID, &paymentID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if orderID.Valid {
		v := orderID.String
		t.OrderID = &v
	}
	if paymentID.Valid {
		v := paymentID.String
		t.PaymentID = &v
	}
	t.Items = []model.TicketItem{}
	return &t, nil
}

// GetByID returns a single booking with its line items, or
// ErrTicketNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, map[uint64]*model.Ticket{t.ID: t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByOrderID locates the booking a gateway order was created for.
func (r *TicketRepo) GetByOrderID(ctx context.Context, orderID string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE order_id = ?`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, map[uint64]*model.Ticket{t.ID: t}); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByUser returns all bookings for a user, newest first, each with
// its line items populated.
func (r *TicketRepo) ListByUser(ctx context.Context, userID string) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.Ticket, len(tickets))
	for i := range tickets {
		byID[tickets[i].ID] = &tickets[i]
	}
	if err := r.loadItems(ctx, byID); err != nil {
		return nil, err
	}
	return tickets, nil
}

// SeatLabels returns every seat label already issued for the given
// (event, type code) scope across all bookings. The booking service
// feeds this snapshot to the allocator when minting fresh labels.
func (r *TicketRepo) SeatLabels(ctx context.Context, eventID uint64, code string) ([]string, error) {
	const q = `SELECT seat_label FROM ticket_seats WHERE event_id = ? AND type_code = ?`
	rows, err := r.db.QueryContext(ctx, q, eventID, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// SetOrder records the gateway order id created for a booking.
func (r *TicketRepo) SetOrder(ctx context.Context, id uint64, orderID string) error {
	const q = `UPDATE tickets SET order_id = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, orderID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// SetPaymentStatus transitions the booking's payment status and,
// when present, records the gateway payment id.
func (r *TicketRepo) SetPaymentStatus(ctx context.Context, id uint64, status string, paymentID *string) error {
	const q = `UPDATE tickets SET payment_status = ?, payment_id = COALESCE(?, payment_id) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, paymentID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tickets WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a booking; line items and seat rows follow through the
// FK cascades. Used by the rollback workflow, so a missing row must
// surface as ErrTicketNotFound rather than succeed silently.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}
