// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried on the booking.events queue.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is created or cancelled. It
// carries enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingEvent struct {
	Type             string `json:"type"`
	BookingID        uint64 `json:"booking_id"`
	Reference        string `json:"reference"`
	RenterID         uint64 `json:"renter_id"`
	ListingID        uint64 `json:"listing_id"`
	ListingName      string `json:"listing_name,omitempty"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	TotalAmountCents uint32 `json:"total_amount_cents"`
	OccurredAt       string `json:"occurred_at"`
}
