// Package repository contains the data access layer. Each entity has its
// own repository over database/sql; services receive them through small
// store interfaces so tests can substitute in-memory fakes.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eventpro/ticketing/internal/model"
)

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, description, date, time, location, price, image, image_id, category, available_seats, created_at, updated_at`

// scanEvent reads one row into a model.Event. The row must select
// eventColumns in order.
func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var ev model.Event
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.Date, &ev.Time, &ev.Location,
		&ev.Price, &ev.Image, &ev.ImageID, &ev.Category, &ev.AvailableSeats,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Create inserts a new event and populates the generated ID and
// timestamp fields on the given model.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events (title, description, date, time, location, price, image, image_id, category, available_seats)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.Description, ev.Date, ev.Time, ev.Location,
		ev.Price, ev.Image, ev.ImageID, ev.Category, ev.AvailableSeats,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, ev.ID).Scan(&ev.CreatedAt, &ev.UpdatedAt)
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return ev, err
}

// List returns all events ordered by creation time descending (newest
// first). When no events exist, an empty slice is returned.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// Update overwrites the mutable fields of an event. The image columns
// are included so callers replacing the asset persist both the URL and
// the asset store file id together.
func (r *EventRepo) Update(ctx context.Context, ev *model.Event) error {
	const q = `UPDATE events SET title = ?, description = ?, date = ?, time = ?, location = ?,
			   price = ?, image = ?, image_id = ?, category = ?, available_seats = ?
			   WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.Description, ev.Date, ev.Time, ev.Location,
		ev.Price, ev.Image, ev.ImageID, ev.Category, ev.AvailableSeats, ev.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish a missing row from an update that changed nothing.
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, ev.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes an event. Ticket types owned by the event are removed
// through the FK cascade.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AdjustAvailableSeats changes the aggregate remaining capacity of an
// event by delta (negative for bookings, positive for rollbacks).
// Decrements are conditional so the counter can never go below zero;
// when the guard fails, ErrInsufficientQuantity is returned.
func (r *EventRepo) AdjustAvailableSeats(ctx context.Context, id uint64, delta int64) error {
	var res sql.Result
	var err error
	if delta < 0 {
		const q = `UPDATE events SET available_seats = available_seats + ? WHERE id = ? AND available_seats >= ?`
		res, err = r.db.ExecContext(ctx, q, delta, id, -delta)
	} else {
		const q = `UPDATE events SET available_seats = available_seats + ? WHERE id = ?`
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
		// Either the event is missing or the decrement guard failed.
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}
		return ErrInsufficientQuantity
	}
	return nil
}
