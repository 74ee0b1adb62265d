package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpg/booking-server/internal/model"
)

func fixtureBooking() (model.Booking, model.Listing) {
	created := time.Date(2026, time.August, 20, 9, 30, 0, 0, time.UTC)
	b := model.Booking{
		ID:               42,
		RenterID:         11,
		ListingID:        7,
		RenterName:       "Asha",
		RenterContact:    "+91-900000000",
		CheckIn:          time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:         time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC),
		TotalAmountCents: 1000_00,
		PaymentState:     model.PaymentPending,
		BookingState:     model.BookingPending,
		Reference:        "PG-7K3MQ2XWZ",
		CreatedAt:        created,
	}
	l := model.Listing{
		ID:      7,
		Name:    "Green Nest PG",
		Address: "14 MG Road",
		City:    "Pune",
	}
	return b, l
}

func TestRenderProducesPDF(t *testing.T) {
	b, l := fixtureBooking()
	out, err := Render(b, l, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output should be a PDF document")
	assert.Greater(t, len(out), 500)
}

func TestRenderIsDeterministic(t *testing.T) {
	// Re-issuing an invoice for the same booking must yield identical
	// bytes; the document creation date is pinned to the booking's.
	b, l := fixtureBooking()
	first, err := Render(b, l, "asha@example.com")
	require.NoError(t, err)
	second, err := Render(b, l, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000.00", formatAmount(1000_00))
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "12.30", formatAmount(1230))
}
