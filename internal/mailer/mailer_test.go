package mailer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpg/booking-server/internal/model"
)

type recordingTransport struct {
	sent    []Message
	failFor map[string]bool // recipients whose send should fail
}

func (r *recordingTransport) Send(msg Message) error {
	if r.failFor[msg.To] {
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func mailFixture() (model.Booking, model.Listing) {
	b := model.Booking{
		RenterName:       "Asha",
		RenterContact:    "+91-900000000",
		CheckIn:          time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:         time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC),
		TotalAmountCents: 1000_00,
		Reference:        "PG-7K3MQ2XWZ",
	}
	l := model.Listing{Name: "Green Nest PG"}
	return b, l
}

func TestDispatchBookingSendsBothMails(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(tr)
	b, l := mailFixture()

	failed := d.DispatchBooking(b, l, "renter@example.com", "owner@example.com", "/tmp/invoice.pdf")
	assert.Zero(t, failed)
	require.Len(t, tr.sent, 2)

	renter := tr.sent[0]
	assert.Equal(t, "renter@example.com", renter.To)
	assert.Contains(t, renter.Subject, b.Reference)
	assert.Equal(t, []string{"/tmp/invoice.pdf"}, renter.Attachments)
	assert.Contains(t, renter.HTML, "Green Nest PG")

	owner := tr.sent[1]
	assert.Equal(t, "owner@example.com", owner.To)
	assert.Empty(t, owner.Attachments)
	assert.Contains(t, owner.HTML, "Asha")
}

func TestDispatchBookingAttemptsBothOnFailure(t *testing.T) {
	// Renter mail failing must not suppress the owner notification.
	tr := &recordingTransport{failFor: map[string]bool{"renter@example.com": true}}
	d := NewDispatcher(tr)
	b, l := mailFixture()

	failed := d.DispatchBooking(b, l, "renter@example.com", "owner@example.com", "")
	assert.Equal(t, 1, failed)
	require.Len(t, tr.sent, 1)
	assert.Equal(t, "owner@example.com", tr.sent[0].To)
}

func TestSMTPTransportUnconfiguredIsNoop(t *testing.T) {
	tr := &SMTPTransport{} // no host configured
	err := tr.Send(Message{To: "someone@example.com", Subject: "x", HTML: "<p>x</p>"})
	assert.NoError(t, err)
}
