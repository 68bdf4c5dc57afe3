package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/eventpro/ticketing/internal/model"
)

// ErrTicketTypeNotFound indicates that a ticket type was not located in
// the DB, either by id or by its (event, type code) pair.
var ErrTicketTypeNotFound = errors.New("ticket type not found")

// TicketTypeRepo manages persistence for ticket types. Benefits are
// stored as a JSON array in a TEXT column since they are only ever read
// back as a whole.
type TicketTypeRepo struct {
	db *sql.DB
}

// NewTicketTypeRepo returns a new TicketTypeRepo bound to the given database.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{db: db} }

const ticketTypeColumns = `id, event_id, type_code, name, price, benefits, available_quantity, created_at, updated_at`

func scanTicketType(row interface{ Scan(...any) error }) (*model.TicketType, error) {
	var tt model.TicketType
	var benefits sql.NullString
	err := row.Scan(
		&tt.ID, &tt.EventID, &tt.Type, &tt.Name, &tt.Price,
		&benefits, &tt.AvailableQuantity, &tt.CreatedAt, &tt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tt.Benefits = []string{}
	if benefits.Valid && benefits.String != "" {
		if err := json.Unmarshal([]byte(benefits.String), &tt.Benefits); err != nil {
			return nil, err
		}
	}
	return &tt, nil
}

// Create inserts a single ticket type. The (event_id, type_code) pair
// is unique per event; violating it returns ErrDuplicate.
func (r *TicketTypeRepo) Create(ctx context.Context, tt *model.TicketType) error {
	benefits, err := json.Marshal(tt.Benefits)
	if err != nil {
		return err
	}
	const q = `INSERT INTO ticket_types (event_id, type_code, name, price, benefits, available_quantity)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, tt.EventID, tt.Type, tt.Name, tt.Price, string(benefits), tt.AvailableQuantity)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tt.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM ticket_types WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, tt.ID).Scan(&tt.CreatedAt, &tt.UpdatedAt)
}

// ListByEvent returns all ticket types for an event ordered by id so
// the client sees them in setup order.
func (r *TicketTypeRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.TicketType, 0)
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *tt)
	}
	return types, rows.Err()
}

// GetByID returns a single ticket type or ErrTicketTypeNotFound.
func (r *TicketTypeRepo) GetByID(ctx context.Context, id uint64) (*model.TicketType, error) {
	const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = ?`
	tt, err := scanTicketType(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketTypeNotFound
	}
	return tt, err
}

// GetByEventAndType locates a ticket type by its owning event and type
// code. This is the logical join the booking service uses to resolve
// requested line items.
func (r *TicketTypeRepo) GetByEventAndType(ctx context.Context, eventID uint64, code string) (*model.TicketType, error) {
	const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = ? AND type_code = ?`
	tt, err := scanTicketType(r.db.QueryRowContext(ctx, q, eventID, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketTypeNotFound
	}
	return tt, err
}

// Update overwrites the mutable display fields of a ticket type. The
// capacity counter is deliberately excluded; it only moves through
// AdjustQuantity so booking and rollback stay the sole writers.
func (r *TicketTypeRepo) Update(ctx context.Context, tt *model.TicketType) error {
	benefits, err := json.Marshal(tt.Benefits)
	if err != nil {
		return err
	}
	const q = `UPDATE ticket_types SET name = ?, price = ?, benefits = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, tt.Name, tt.Price, string(benefits), tt.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM ticket_types WHERE id = ?`, tt.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketTypeNotFound
			}
			return err
		}
	}
	return nil
}

// AdjustQuantity changes the remaining capacity of a ticket type by
// delta. Decrements are guarded at the SQL level: when fewer units
// remain than requested no row is updated and ErrInsufficientQuantity
// is returned, so two racing bookings can never both take the last
// unit.
func (r *TicketTypeRepo) AdjustQuantity(ctx context.Context, id uint64, delta int64) error {
	var res sql.Result
	var err error
	if delta < 0 {
		const q = `UPDATE ticket_types SET available_quantity = available_quantity + ? WHERE id = ? AND available_quantity >= ?`
		res, err = r.db.ExecContext(ctx, q, delta, id, -delta)
	} else {
		const q = `UPDATE ticket_types SET available_quantity = available_quantity + ? WHERE id = ?`
		res, err = r.db.ExecContext(ctx, q, delta, id)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM ticket_types WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketTypeNotFound
			}
			return err
		}
		return ErrInsufficientQuantity
	}
	return nil
}
