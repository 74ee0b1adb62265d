package repository

import (
	"context"
	"database/sql"

	"github.com/smartpg/booking-server/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  A booking
// reserves one room of a listing for a date range; the capacity
// mutation itself lives in ListingRepo so that it stays a single
// conditional statement.  All timestamp fields are stored in UTC and
// check_in/check_out are DATE columns.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = "id, renter_id, listing_id, renter_name, renter_contact, check_in, check_out, total_amount_cents, payment_state, booking_state, reference, created_at, updated_at"

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.RenterID, &b.ListingID, &b.RenterName, &b.RenterContact,
		&b.CheckIn, &b.CheckOut, &b.TotalAmountCents, &b.PaymentState, &b.BookingState,
		&b.Reference, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking in its initial state and populates the
// generated ID and timestamps on the provided model.  The reference
// must already be set and is unique; the caller generates it.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (renter_id, listing_id, renter_name, renter_contact, check_in, check_out,
		                       total_amount_cents, payment_state, booking_state, reference)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.RenterID, b.ListingID, b.RenterName, b.RenterContact,
		b.CheckIn.UTC().Format("2006-01-02"), b.CheckOut.UTC().Format("2006-01-02"),
		b.TotalAmountCents, b.PaymentState, b.BookingState, b.Reference)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	got, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID returns a booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+bookingCols+" FROM bookings WHERE id = ?", id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ListByRenter returns the renter's bookings, newest first.
func (r *BookingRepo) ListByRenter(ctx context.Context, renterID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE renter_id = ? ORDER BY created_at DESC", renterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListByListing returns all bookings against a listing, newest first.
// Used by owners to see activity on their PGs.
func (r *BookingRepo) ListByListing(ctx context.Context, listingID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE listing_id = ? ORDER BY created_at DESC", listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListAll returns every booking, newest first. Admin only.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingCols+" FROM bookings ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// MarkCancelled flips booking_state to CANCELLED.  The WHERE clause
// excludes already-cancelled rows so the compensating capacity
// increment runs at most once even if two cancellations race; callers
// get ErrBookingNotFound for an absent row and a zero-row update for
// an already-cancelled one (reported via the returned bool).
func (r *BookingRepo) MarkCancelled(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET booking_state = ? WHERE id = ? AND booking_state <> ?",
		model.BookingCancelled, id, model.BookingCancelled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)", id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrBookingNotFound
	}
	return false, nil
}

// MarkConfirmed sets payment_state COMPLETED and booking_state
// CONFIRMED after a verified payment.  Capacity is untouched: the room
// was already decremented at reservation time.  The WHERE clause
// excludes CANCELLED rows so a verification racing a cancellation can
// never revive a booking whose room was already released.
func (r *BookingRepo) MarkConfirmed(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET payment_state = ?, booking_state = ? WHERE id = ? AND booking_state <> ?",
		model.PaymentCompleted, model.BookingConfirmed, id, model.BookingCancelled)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var state string
		err := r.db.QueryRowContext(ctx,
			"SELECT booking_state FROM bookings WHERE id = ?", id).Scan(&state)
		if err == sql.ErrNoRows {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if state == model.BookingCancelled {
			return ErrBookingCancelled
		}
	}
	return nil
}

// Count returns the total number of bookings for dashboard stats.
func (r *BookingRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n)
	return n, err
}
