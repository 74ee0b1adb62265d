package model

import "time"

// Listing status values.  Only ACTIVE listings appear in public browse
// results; owners and admins can toggle the flag at any time.
const (
	ListingActive   = "ACTIVE"
	ListingInactive = "INACTIVE"
)

// Listing is a rentable PG unit: a property with a number of bookable
// rooms and a monthly rent.  AvailableRooms is the only mutable shared
// counter in the system; it is changed exclusively through the
// conditional reserve/release operations on the listing store so it can
// never go negative.
//
// Fields:
//  ID             – primary key identifier.
//  OwnerID        – user who listed the PG.
//  Name           – PG display name.
//  Address        – street address.
//  City           – city used for equality filtering in browse.
//  RentCents      – monthly rent in cents (positive).
//  AvailableRooms – count of currently bookable rooms (never negative).
//  Facilities     – comma separated facility labels (WiFi, AC, ...).
//  Status         – ACTIVE or INACTIVE.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Listing struct {
	ID             uint64    // listings.id
	OwnerID        uint64    // listings.owner_id
	Name           string    // listings.name
	Address        string    // listings.address
	City           string    // listings.city
	RentCents      uint32    // listings.rent_cents
	AvailableRooms uint32    // listings.available_rooms
	Facilities     string    // listings.facilities
	Status         string    // listings.status
	CreatedAt      time.Time // listings.created_at
	UpdatedAt      time.Time // listings.updated_at
}

// ListingPhoto stores the public URL of an uploaded listing image.  The
// bytes themselves live in the blob store; only the URL is persisted.
type ListingPhoto struct {
	ID        uint64    // listing_photos.id
	ListingID uint64    // listing_photos.listing_id
	URL       string    // listing_photos.url
	CreatedAt time.Time // listing_photos.created_at
}
