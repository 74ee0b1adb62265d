package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpg/booking-server/internal/model"
	"github.com/smartpg/booking-server/internal/repository"
)

// ----- in-memory fakes -----

type fakeListings struct {
	listings map[uint64]*model.Listing
	releases int
}

func newFakeListings(ls ...*model.Listing) *fakeListings {
	m := make(map[uint64]*model.Listing, len(ls))
	for _, l := range ls {
		m[l.ID] = l
	}
	return &fakeListings{listings: m}
}

func (f *fakeListings) GetByID(_ context.Context, id uint64) (*model.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) ReserveUnit(_ context.Context, id uint64) error {
	l, ok := f.listings[id]
	if !ok {
		return repository.ErrListingNotFound
	}
	if l.AvailableRooms == 0 {
		return repository.ErrNoCapacity
	}
	l.AvailableRooms--
	return nil
}

func (f *fakeListings) ReleaseUnit(_ context.Context, id uint64) error {
	l, ok := f.listings[id]
	if !ok {
		return repository.ErrListingNotFound
	}
	l.AvailableRooms++
	f.releases++
	return nil
}

type fakeBookings struct {
	bookings   map[uint64]*model.Booking
	nextID     uint64
	failCreate error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: make(map[uint64]*model.Booking), nextID: 1}
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	b.ID = f.nextID
	f.nextID++
	b.CreatedAt = time.Now().UTC()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) MarkCancelled(_ context.Context, id uint64) (bool, error) {
	b, ok := f.bookings[id]
	if !ok {
		return false, repository.ErrBookingNotFound
	}
	if b.BookingState == model.BookingCancelled {
		return false, nil
	}
	b.BookingState = model.BookingCancelled
	return true, nil
}

func (f *fakeBookings) MarkConfirmed(_ context.Context, id uint64) error {
	b, ok := f.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.BookingState == model.BookingCancelled {
		return repository.ErrBookingCancelled
	}
	b.PaymentState = model.PaymentCompleted
	b.BookingState = model.BookingConfirmed
	return nil
}

type fakePayments struct {
	byRef map[string]*model.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{byRef: make(map[string]*model.Payment)}
}

func (f *fakePayments) Create(_ context.Context, p *model.Payment) error {
	if _, dup := f.byRef[p.TransactionRef]; dup {
		return repository.ErrDuplicateTransaction
	}
	cp := *p
	f.byRef[p.TransactionRef] = &cp
	return nil
}

// ----- helpers -----

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func testListing(rooms uint32) *model.Listing {
	return &model.Listing{
		ID:             7,
		OwnerID:        2,
		Name:           "Green Nest PG",
		City:           "Pune",
		RentCents:      3000_00,
		AvailableRooms: rooms,
		Status:         model.ListingActive,
	}
}

func reserveInput() ReserveInput {
	return ReserveInput{
		ListingID:     7,
		RenterID:      11,
		RenterName:    "Asha",
		RenterContact: "+91-900000000",
		CheckIn:       day(1),
		CheckOut:      day(11),
	}
}

// ----- pricing -----

func TestProrateRent(t *testing.T) {
	// 3000.00 monthly rent, 10-day stay -> 1000.00.
	assert.Equal(t, uint64(1000_00), ProrateRent(3000_00, 10))
	assert.Equal(t, uint64(3000_00), ProrateRent(3000_00, 30))
	assert.Equal(t, uint64(100_00), ProrateRent(3000_00, 1))
}

func TestProrateRentLargeStayDoesNotWrap(t *testing.T) {
	// A ten-year stay at a huge rent exceeds 32 bits; the 64-bit result
	// must be exact, not truncated.
	assert.Equal(t, uint64(486_666_666_667), ProrateRent(4_000_000_000, 3650))
}

func TestStayDays(t *testing.T) {
	assert.Equal(t, 10, StayDays(day(1), day(11)))
	assert.Equal(t, 0, StayDays(day(5), day(5)))
	assert.Equal(t, -3, StayDays(day(8), day(5)))
}

// ----- Reserve -----

func TestReserveDecrementsCapacityAndPricesStay(t *testing.T) {
	listings := newFakeListings(testListing(3))
	bookings := newFakeBookings()
	rec := NewReconciler(listings, bookings, newFakePayments())

	b, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)

	assert.Equal(t, uint32(2), listings.listings[7].AvailableRooms)
	assert.Equal(t, model.BookingPending, b.BookingState)
	assert.Equal(t, model.PaymentPending, b.PaymentState)
	assert.Equal(t, uint32(1000_00), b.TotalAmountCents)
	assert.NotEmpty(t, b.Reference)
}

func TestReserveUniqueReferences(t *testing.T) {
	listings := newFakeListings(testListing(5))
	rec := NewReconciler(listings, newFakeBookings(), newFakePayments())

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		b, err := rec.Reserve(context.Background(), reserveInput())
		require.NoError(t, err)
		assert.False(t, seen[b.Reference], "reference %q issued twice", b.Reference)
		seen[b.Reference] = true
	}
}

func TestReserveExhaustedListing(t *testing.T) {
	listings := newFakeListings(testListing(1))
	rec := NewReconciler(listings, newFakeBookings(), newFakePayments())

	_, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)

	_, err = rec.Reserve(context.Background(), reserveInput())
	assert.ErrorIs(t, err, repository.ErrNoCapacity)
	assert.Equal(t, uint32(0), listings.listings[7].AvailableRooms)
}

func TestReserveInvalidPeriodTouchesNothing(t *testing.T) {
	listings := newFakeListings(testListing(2))
	rec := NewReconciler(listings, newFakeBookings(), newFakePayments())

	in := reserveInput()
	in.CheckOut = in.CheckIn // zero-day stay
	_, err := rec.Reserve(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Equal(t, uint32(2), listings.listings[7].AvailableRooms)

	in.CheckOut = in.CheckIn.AddDate(0, 0, -2)
	_, err = rec.Reserve(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Equal(t, uint32(2), listings.listings[7].AvailableRooms)
}

func TestReserveRejectsOverflowingTotal(t *testing.T) {
	l := testListing(2)
	l.RentCents = 4_000_000_000
	listings := newFakeListings(l)
	rec := NewReconciler(listings, newFakeBookings(), newFakePayments())

	in := reserveInput()
	in.CheckOut = in.CheckIn.AddDate(10, 0, 0) // ten-year stay
	_, err := rec.Reserve(context.Background(), in)
	assert.ErrorIs(t, err, ErrAmountTooLarge)
	assert.Equal(t, uint32(2), listings.listings[7].AvailableRooms)
}

func TestReserveMissingListing(t *testing.T) {
	rec := NewReconciler(newFakeListings(), newFakeBookings(), newFakePayments())

	in := reserveInput()
	in.ListingID = 999
	_, err := rec.Reserve(context.Background(), in)
	assert.ErrorIs(t, err, repository.ErrListingNotFound)
}

func TestReserveReleasesUnitWhenBookingWriteFails(t *testing.T) {
	listings := newFakeListings(testListing(2))
	bookings := newFakeBookings()
	bookings.failCreate = errors.New("insert failed")
	rec := NewReconciler(listings, bookings, newFakePayments())

	_, err := rec.Reserve(context.Background(), reserveInput())
	require.Error(t, err)
	assert.Equal(t, uint32(2), listings.listings[7].AvailableRooms)
	assert.Equal(t, 1, listings.releases)
}

// ----- Cancel -----

func TestCancelReleasesCapacityExactlyOnce(t *testing.T) {
	listings := newFakeListings(testListing(1))
	bookings := newFakeBookings()
	rec := NewReconciler(listings, bookings, newFakePayments())

	b, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)
	require.Equal(t, uint32(0), listings.listings[7].AvailableRooms)

	got, err := rec.Cancel(context.Background(), b.ID, b.RenterID, model.RoleTenant)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.BookingState)
	assert.Equal(t, uint32(1), listings.listings[7].AvailableRooms)

	// A second cancellation is a no-op: same record, no extra release.
	got, err = rec.Cancel(context.Background(), b.ID, b.RenterID, model.RoleTenant)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.BookingState)
	assert.Equal(t, uint32(1), listings.listings[7].AvailableRooms)
	assert.Equal(t, 1, listings.releases)
}

func TestCancelForbiddenForOtherUsers(t *testing.T) {
	listings := newFakeListings(testListing(1))
	rec := NewReconciler(listings, newFakeBookings(), newFakePayments())

	b, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)

	_, err = rec.Cancel(context.Background(), b.ID, b.RenterID+1, model.RoleTenant)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	// Rejected cancellation leaves both booking and capacity untouched.
	assert.Equal(t, uint32(0), listings.listings[7].AvailableRooms)
	got, err := rec.Bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, got.BookingState)
}

func TestCancelAllowedForAdmin(t *testing.T) {
	listings := newFakeListings(testListing(1))
	rec := NewReconciler(listings, newFakeBookings(), newFakePayments())

	b, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)

	got, err := rec.Cancel(context.Background(), b.ID, 999, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.BookingState)
}

func TestCancelToleratesDeletedListing(t *testing.T) {
	listings := newFakeListings(testListing(1))
	bookings := newFakeBookings()
	rec := NewReconciler(listings, bookings, newFakePayments())

	b, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)

	delete(listings.listings, 7)

	got, err := rec.Cancel(context.Background(), b.ID, b.RenterID, model.RoleTenant)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.BookingState)
}

func TestCancelMissingBooking(t *testing.T) {
	rec := NewReconciler(newFakeListings(testListing(1)), newFakeBookings(), newFakePayments())

	_, err := rec.Cancel(context.Background(), 42, 11, model.RoleTenant)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

// ----- ConfirmPayment -----

func TestConfirmPaymentMarksBookingConfirmed(t *testing.T) {
	listings := newFakeListings(testListing(1))
	bookings := newFakeBookings()
	rec := NewReconciler(listings, bookings, newFakePayments())

	b, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)

	got, err := rec.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		BookingID:      b.ID,
		UserID:         b.RenterID,
		AmountCents:    b.TotalAmountCents,
		Gateway:        "mock",
		TransactionRef: "txn-1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, got.BookingState)
	assert.Equal(t, model.PaymentCompleted, got.PaymentState)
	// Confirmation never touches capacity.
	assert.Equal(t, uint32(0), listings.listings[7].AvailableRooms)
}

func TestConfirmPaymentRejectsCancelledBooking(t *testing.T) {
	// Cancellation is terminal: the released room must not be revived
	// by a late payment verification.
	listings := newFakeListings(testListing(1))
	bookings := newFakeBookings()
	payments := newFakePayments()
	rec := NewReconciler(listings, bookings, payments)

	b, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)
	_, err = rec.Cancel(context.Background(), b.ID, b.RenterID, model.RoleTenant)
	require.NoError(t, err)

	_, err = rec.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		BookingID: b.ID, UserID: b.RenterID, AmountCents: b.TotalAmountCents,
		Gateway: "mock", TransactionRef: "txn-late",
	})
	assert.ErrorIs(t, err, repository.ErrBookingCancelled)

	got, err := bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.BookingState)
	assert.Equal(t, model.PaymentPending, got.PaymentState)
	assert.Equal(t, uint32(1), listings.listings[7].AvailableRooms)
	assert.Empty(t, payments.byRef, "no payment may be recorded against a cancelled booking")
}

func TestConfirmPaymentRejectsDuplicateTransaction(t *testing.T) {
	listings := newFakeListings(testListing(2))
	bookings := newFakeBookings()
	rec := NewReconciler(listings, bookings, newFakePayments())

	b1, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)
	b2, err := rec.Reserve(context.Background(), reserveInput())
	require.NoError(t, err)

	_, err = rec.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		BookingID: b1.ID, UserID: b1.RenterID, AmountCents: b1.TotalAmountCents,
		Gateway: "mock", TransactionRef: "txn-dup",
	})
	require.NoError(t, err)

	// Replaying the reference against another booking fails before any
	// state changes.
	_, err = rec.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		BookingID: b2.ID, UserID: b2.RenterID, AmountCents: b2.TotalAmountCents,
		Gateway: "mock", TransactionRef: "txn-dup",
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateTransaction)

	got, err := bookings.GetByID(context.Background(), b2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, got.BookingState)
	assert.Equal(t, model.PaymentPending, got.PaymentState)
}
