package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/smartpg/booking-server/internal/model"
)

// PaymentRepo persists payment records.  transaction_ref carries a
// unique index; inserting a second record with the same reference
// yields ErrDuplicateTransaction, which is how replayed gateway
// callbacks are rejected.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a payment and populates the generated ID.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (booking_id, user_id, amount_cents, gateway, transaction_ref, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.UserID, p.AmountCents, p.Gateway, p.TransactionRef, p.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateTransaction
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByTransactionRef returns the payment recorded for a gateway
// transaction, or sql.ErrNoRows.
func (r *PaymentRepo) GetByTransactionRef(ctx context.Context, ref string) (*model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, booking_id, user_id, amount_cents, gateway, transaction_ref, status, created_at
		 FROM payments WHERE transaction_ref = ? LIMIT 1`, ref).
		Scan(&p.ID, &p.BookingID, &p.UserID, &p.AmountCents, &p.Gateway, &p.TransactionRef, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByBooking returns all payments recorded against a booking.
func (r *PaymentRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, user_id, amount_cents, gateway, transaction_ref, status, created_at
		 FROM payments WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.UserID, &p.AmountCents, &p.Gateway, &p.TransactionRef, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
