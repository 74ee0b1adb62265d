package model

import "time"

// Booking state values.  CANCELLED is terminal: a cancelled booking is
// never revived and repeat cancellations are no-ops.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Payment state values tracked on the booking itself.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

// Booking reserves exactly one room of a listing for a date range.
// Creating a booking decrements the listing's available rooms by one;
// cancelling it increments them back exactly once.  The booking keeps
// its own copy of the renter's name and contact since those may differ
// from the account identity.  A booking outlives its listing: deleting
// a listing does not cascade to bookings.
//
// Fields:
//  ID               – primary key identifier.
//  RenterID         – user who made the booking.
//  ListingID        – listing being booked (may no longer exist).
//  RenterName       – renter name captured at booking time.
//  RenterContact    – renter contact captured at booking time.
//  CheckIn          – first day of the stay (date, UTC).
//  CheckOut         – day the room is vacated; strictly after CheckIn.
//  TotalAmountCents – rent prorated by the stay length in days.
//  PaymentState     – PENDING, COMPLETED or FAILED.
//  BookingState     – PENDING, CONFIRMED or CANCELLED.
//  Reference        – unique human-readable code, immutable ("PG-...").
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
	ID               uint64    // bookings.id
	RenterID         uint64    // bookings.renter_id
	ListingID        uint64    // bookings.listing_id
	RenterName       string    // bookings.renter_name
	RenterContact    string    // bookings.renter_contact
	CheckIn          time.Time // bookings.check_in
	CheckOut         time.Time // bookings.check_out
	TotalAmountCents uint32    // bookings.total_amount_cents
	PaymentState     string    // bookings.payment_state
	BookingState     string    // bookings.booking_state
	Reference        string    // bookings.reference
	CreatedAt        time.Time // bookings.created_at
	UpdatedAt        time.Time // bookings.updated_at
}
