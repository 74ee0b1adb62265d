package model

import "time"

// Payment status values.
const (
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Payment is the companion record written when a gateway transaction is
// verified against a booking.  TransactionRef is unique so that a
// replayed verification of the same gateway transaction is rejected
// instead of confirming the booking twice.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – booking being paid for.
//  UserID         – user who paid.
//  AmountCents    – amount charged in cents.
//  Gateway        – gateway label (e.g. RAZORPAY, MOCK).
//  TransactionRef – gateway transaction id, unique.
//  Status         – SUCCESS or FAILED.
//  CreatedAt      – creation timestamp.
type Payment struct {
	ID             uint64    // payments.id
	BookingID      uint64    // payments.booking_id
	UserID         uint64    // payments.user_id
	AmountCents    uint32    // payments.amount_cents
	Gateway        string    // payments.gateway
	TransactionRef string    // payments.transaction_ref
	Status         string    // payments.status
	CreatedAt      time.Time // payments.created_at
}
