package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/eventpro/ticketing/internal/model"
)

// ErrPaymentNotFound indicates that no payment ledger entry matched the
// lookup (by order id or by booking).
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepo manages the payment ledger. One row exists per gateway
// order; the order id is unique. The payment service is the only
// writer.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, ticket_id, order_id, payment_id, amount, status, verified_at, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*model.Payment, error) {
	var p model.Payment
	var paymentID sql.NullString
	var verifiedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.TicketID, &p.OrderID, &paymentID, &p.Amount, &p.Status,
		&verifiedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentID.Valid {
		v := paymentID.String
		p.PaymentID = &v
	}
	if verifiedAt.Valid {
		v := verifiedAt.Time
		p.VerifiedAt = &v
	}
	return &p, nil
}

// Create inserts a pending ledger entry for a freshly created gateway
// order. A duplicate order id returns ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (ticket_id, order_id, amount, status) VALUES (?, ?, ?, ?)`
	status := p.Status
	if status == "" {
		status = model.PaymentPending
	}
	res, err := r.db.ExecContext(ctx, q, p.TicketID, p.OrderID, p.Amount, status)
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
	p.ID = uint64(id)
	p.Status = status
	const sel = `SELECT created_at FROM payments WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}

// GetByOrderID returns the ledger entry for a gateway order or
// ErrPaymentNotFound.
func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

// LatestByTicket returns the most recent ledger entry for a booking.
// A booking accumulates multiple rows when the client re-creates an
// order after an abandoned checkout; status queries always reflect the
// newest attempt.
func (r *PaymentRepo) LatestByTicket(ctx context.Context, ticketID uint64) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE ticket_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, ticketID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

// SetStatus records the verification outcome for an order: the new
// status, the gateway payment id when present and the verification
// timestamp.
func (r *PaymentRepo) SetStatus(ctx context.Context, orderID, status string, paymentID *string, verifiedAt *time.Time) error {
	const q = `UPDATE payments SET status = ?, payment_id = COALESCE(?, payment_id), verified_at = COALESCE(?, verified_at) WHERE order_id = ?`
	res, err := r.db.ExecContext(ctx, q, status, paymentID, verifiedAt, orderID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM payments WHERE order_id = ?`, orderID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPaymentNotFound
			}
			return err
		}
	}
	return nil
}
