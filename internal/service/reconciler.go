// Package service holds the inventory reconciler: the logic that keeps
// a listing's room counter consistent with the set of non-cancelled
// bookings against it. Reservation decrements the counter exactly once,
// cancellation increments it back exactly once, and payment
// confirmation never touches it. The reconciler talks to its stores
// through interfaces so tests can substitute in-memory fakes for the
// MySQL repositories.
package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/smartpg/booking-server/internal/model"
	"github.com/smartpg/booking-server/internal/repository"
	"github.com/smartpg/booking-server/internal/utils"
)

// ErrInvalidPeriod is returned when a reservation's check-out date is
// not strictly after its check-in date. The period is validated before
// any store is touched, so a bad period never mutates capacity.
var ErrInvalidPeriod = errors.New("check-out must be after check-in")

// ErrAmountTooLarge is returned when the prorated total of a stay does
// not fit the 32-bit cents column. Rejected before capacity is touched.
var ErrAmountTooLarge = errors.New("total amount exceeds supported range")

// ListingStore is the listing-side contract the reconciler depends on.
// ReserveUnit and ReleaseUnit must be atomic conditional mutations:
// reserve fails with repository.ErrNoCapacity instead of ever taking
// the counter negative.
type ListingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Listing, error)
	ReserveUnit(ctx context.Context, id uint64) error
	ReleaseUnit(ctx context.Context, id uint64) error
}

// BookingStore is the booking-side contract. MarkCancelled reports
// whether the call actually changed state so the compensating capacity
// increment runs at most once.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	MarkCancelled(ctx context.Context, id uint64) (bool, error)
	MarkConfirmed(ctx context.Context, id uint64) error
}

// PaymentStore records verified gateway transactions. Create must
// return repository.ErrDuplicateTransaction when the transaction
// reference was already recorded.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
}

// Reconciler couples booking state transitions to listing capacity
// mutations.
type Reconciler struct {
	Listings ListingStore
	Bookings BookingStore
	Payments PaymentStore
}

// NewReconciler constructs a Reconciler and panics if any dependency is nil.
func NewReconciler(listings ListingStore, bookings BookingStore, payments PaymentStore) *Reconciler {
	if listings == nil || bookings == nil || payments == nil {
		panic("nil store passed to NewReconciler")
	}
	return &Reconciler{Listings: listings, Bookings: bookings, Payments: payments}
}

// ReserveInput carries the validated fields of a booking request.
// Dates are day-granular; the handler parses them as "2006-01-02".
type ReserveInput struct {
	ListingID     uint64
	RenterID      uint64
	RenterName    string
	RenterContact string
	CheckIn       time.Time
	CheckOut      time.Time
}

// StayDays returns the number of whole days between check-in and
// check-out. Values <= 0 are invalid periods.
func StayDays(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn) / (24 * time.Hour))
}

// ProrateRent prices a stay as the monthly rent prorated by whole
// days: round(rent * days / 30). Computed in 64-bit integer arithmetic
// so a large rent on a multi-year stay cannot silently wrap; the caller
// decides whether the result still fits its storage type.
func ProrateRent(rentCents uint32, days int) uint64 {
	return (uint64(rentCents)*uint64(days) + 15) / 30
}

// Reserve books one room of a listing for the given period.
//
// It fails with ErrInvalidPeriod before touching any store, with
// repository.ErrListingNotFound when the listing is absent, with
// ErrAmountTooLarge when the prorated total does not fit the amount
// column and with repository.ErrNoCapacity when no room is free. The capacity check
// and decrement are one conditional store operation, so concurrent
// reservations of the last room cannot both succeed. On success a
// PENDING booking with a fresh unique reference is returned. If the
// booking row cannot be written after the decrement, the unit is
// released again so capacity is not leaked.
func (s *Reconciler) Reserve(ctx context.Context, in ReserveInput) (*model.Booking, error) {
	days := StayDays(in.CheckIn, in.CheckOut)
	if days <= 0 {
		return nil, ErrInvalidPeriod
	}
	listing, err := s.Listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	total := ProrateRent(listing.RentCents, days)
	if total > math.MaxUint32 {
		return nil, ErrAmountTooLarge
	}
	if err := s.Listings.ReserveUnit(ctx, in.ListingID); err != nil {
		return nil, err
	}
	ref, err := utils.NewBookingRef()
	if err != nil {
		s.compensate(ctx, in.ListingID)
		return nil, err
	}
	b := &model.Booking{
		RenterID:         in.RenterID,
		ListingID:        in.ListingID,
		RenterName:       in.RenterName,
		RenterContact:    in.RenterContact,
		CheckIn:          in.CheckIn,
		CheckOut:         in.CheckOut,
		TotalAmountCents: uint32(total),
		PaymentState:     model.PaymentPending,
		BookingState:     model.BookingPending,
		Reference:        ref,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		s.compensate(ctx, in.ListingID)
		return nil, err
	}
	return b, nil
}

// compensate returns a reserved unit after a failed booking write.
func (s *Reconciler) compensate(ctx context.Context, listingID uint64) {
	if err := s.Listings.ReleaseUnit(ctx, listingID); err != nil {
		log.Printf("reconciler: compensating release failed for listing %d: %v", listingID, err)
	}
}

// Cancel transitions a booking to CANCELLED and returns one unit of
// capacity to its listing. Only the original renter or an admin may
// cancel; everyone else gets repository.ErrForbidden. Cancelling an
// already-cancelled booking is a no-op that returns the current record,
// and the capacity increment happens at most once across repeated
// calls. A listing deleted since the booking was made is tolerated:
// the booking still becomes CANCELLED and the missing listing is only
// logged.
func (s *Reconciler) Cancel(ctx context.Context, bookingID, requesterID uint64, requesterRole string) (*model.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != requesterID && requesterRole != model.RoleAdmin {
		return nil, repository.ErrForbidden
	}
	if b.BookingState == model.BookingCancelled {
		return b, nil
	}
	changed, err := s.Bookings.MarkCancelled(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	b.BookingState = model.BookingCancelled
	if !changed {
		// Lost a race with another cancellation; the winner already
		// released the unit.
		return b, nil
	}
	if err := s.Listings.ReleaseUnit(ctx, b.ListingID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			log.Printf("reconciler: listing %d gone, booking %d cancelled without capacity release", b.ListingID, bookingID)
		} else {
			return nil, err
		}
	}
	return b, nil
}

// ConfirmPaymentInput carries a verified gateway transaction.
type ConfirmPaymentInput struct {
	BookingID      uint64
	UserID         uint64
	AmountCents    uint32
	Gateway        string
	TransactionRef string
}

// ConfirmPayment records the transaction and marks the booking
// COMPLETED/CONFIRMED. Capacity is untouched; the room was decremented
// when the booking was created. Replaying the same transaction
// reference fails with repository.ErrDuplicateTransaction before any
// state changes. A CANCELLED booking cannot be confirmed: its room was
// already released, so both this check and the conditional update in
// the store reject it with repository.ErrBookingCancelled.
func (s *Reconciler) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (*model.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.BookingState == model.BookingCancelled {
		return nil, repository.ErrBookingCancelled
	}
	p := &model.Payment{
		BookingID:      in.BookingID,
		UserID:         in.UserID,
		AmountCents:    in.AmountCents,
		Gateway:        in.Gateway,
		TransactionRef: in.TransactionRef,
		Status:         model.PaymentStatusSuccess,
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Bookings.MarkConfirmed(ctx, in.BookingID); err != nil {
		return nil, err
	}
	b.PaymentState = model.PaymentCompleted
	b.BookingState = model.BookingConfirmed
	return b, nil
}
