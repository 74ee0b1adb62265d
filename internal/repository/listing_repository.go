// Package repository contains data access logic for the PG marketplace.
// This file holds the listing repository. Listings carry the only
// mutable shared counter in the system (available_rooms); both
// mutations of that counter are expressed as single conditional UPDATE
// statements so that concurrent reservations can never drive the
// counter below zero or double-book the last room.
package repository

import (
	"context"
	"database/sql"

	"github.com/smartpg/booking-server/internal/model"
)

// ListingRepo manages persistence for listings and their photos.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

const listingCols = "id, owner_id, name, address, city, rent_cents, available_rooms, facilities, status, created_at, updated_at"

func scanListing(row interface{ Scan(...interface{}) error }) (*model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Address, &l.City,
		&l.RentCents, &l.AvailableRooms, &l.Facilities, &l.Status,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a listing and populates the generated ID and
// timestamps on the provided model.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (owner_id, name, address, city, rent_cents, available_rooms, facilities, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.OwnerID, l.Name, l.Address, l.City, l.RentCents, l.AvailableRooms, l.Facilities, l.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	got, err := r.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	*l = *got
	return nil
}

// GetByID returns a listing or ErrListingNotFound.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (*model.Listing, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+listingCols+" FROM listings WHERE id = ?", id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, ErrListingNotFound
	}
	return l, err
}

// ListActive returns up to limit ACTIVE listings, optionally filtered
// by exact city match.  Browse is a plain equality filter; there is no
// ranking or full-text search.
func (r *ListingRepo) ListActive(ctx context.Context, city string, limit int) ([]model.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	q := "SELECT " + listingCols + " FROM listings WHERE status = ?"
	args := []interface{}{model.ListingActive}
	if city != "" {
		q += " AND city = ?"
		args = append(args, city)
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// ListByOwner returns all listings owned by the given user.
func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+listingCols+" FROM listings WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// Update rewrites the mutable listing fields.  Ownership must be
// checked by the caller (owner or admin).
func (r *ListingRepo) Update(ctx context.Context, l *model.Listing) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE listings SET name=?, address=?, city=?, rent_cents=?, available_rooms=?, facilities=?, status=?
		 WHERE id=?`,
		l.Name, l.Address, l.City, l.RentCents, l.AvailableRooms, l.Facilities, l.Status, l.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either absent or identical values; re-check existence.
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a listing.  Bookings referencing it are left in
// place: booking history survives delisting and cancellation of such
// bookings tolerates the missing listing.
func (r *ListingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

// ReserveUnit atomically decrements available_rooms by one, but only
// when at least one room is free.  The check and the decrement are a
// single statement so two concurrent reservations of the last room
// cannot both succeed.  Returns ErrNoCapacity when the counter is
// zero and ErrListingNotFound when the listing is absent.
func (r *ListingRepo) ReserveUnit(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE listings SET available_rooms = available_rooms - 1 WHERE id = ? AND available_rooms > 0", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// Zero rows: distinguish a missing listing from an exhausted one.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM listings WHERE id = ?)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrListingNotFound
	}
	return ErrNoCapacity
}

// ReleaseUnit atomically increments available_rooms by one, reversing
// a prior ReserveUnit.  Returns ErrListingNotFound when the listing
// has been deleted in the meantime; callers decide whether that is
// fatal (for cancellation it is tolerated).
func (r *ListingRepo) ReleaseUnit(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE listings SET available_rooms = available_rooms + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

// CountActive returns the number of ACTIVE listings for dashboard stats.
func (r *ListingRepo) CountActive(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM listings WHERE status = ?", model.ListingActive).Scan(&n)
	return n, err
}

// AddPhoto records the public URL of an uploaded listing image.
func (r *ListingRepo) AddPhoto(ctx context.Context, listingID uint64, url string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO listing_photos (listing_id, url) VALUES (?, ?)", listingID, url)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListPhotos returns the photo URLs of a listing in upload order.
func (r *ListingRepo) ListPhotos(ctx context.Context, listingID uint64) ([]model.ListingPhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, listing_id, url, created_at FROM listing_photos WHERE listing_id = ? ORDER BY id", listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ListingPhoto, 0)
	for rows.Next() {
		var p model.ListingPhoto
		if err := rows.Scan(&p.ID, &p.ListingID, &p.URL, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
