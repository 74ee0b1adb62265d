// Package mailer sends booking notifications over SMTP. Delivery is
// best-effort: a failed send is logged and reported to the caller, but
// callers never roll back a booking because an email bounced. The two
// booking mails (renter confirmation, owner notification) are attempted
// independently so one failure does not suppress the other.
package mailer

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/smartpg/booking-server/internal/model"
)

// Message is a single outbound email. Attachments reference files on
// disk; the caller writes the temp file before sending and removes it
// afterwards.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []string // file paths
}

// Transport delivers a single message. The SMTP dialer implements it
// in production; tests substitute a recording fake.
type Transport interface {
	Send(msg Message) error
}

// SMTPTransport delivers messages through gomail. A zero Host disables
// the transport entirely (Send becomes a logged no-op) so the service
// runs without mail configuration in development.
type SMTPTransport struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Send delivers one message, or logs and skips when unconfigured.
func (t *SMTPTransport) Send(msg Message) error {
	if t.Host == "" {
		log.Printf("mailer: SMTP not configured, skipping mail to %s (%q)", msg.To, msg.Subject)
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("Smart PG Management <%s>", t.From))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", wrapHTML(msg.HTML))
	for _, path := range msg.Attachments {
		m.Attach(path)
	}
	d := gomail.NewDialer(t.Host, t.Port, t.User, t.Pass)
	return d.DialAndSend(m)
}

// wrapHTML applies the shared mail chrome around a message body.
func wrapHTML(body string) string {
	return `<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; border: 1px solid #eee; border-radius: 8px; padding: 20px;">` +
		`<h2 style="color:#2C3E50;">Smart PG Management</h2>` +
		body +
		`<br /><p style="font-size:13px; color:#777;">If you did not request this email, please ignore it.</p></div>`
}

// Dispatcher fans booking facts out to renter and owner.
type Dispatcher struct {
	Transport Transport
}

// NewDispatcher constructs a Dispatcher and panics on a nil transport.
func NewDispatcher(t Transport) *Dispatcher {
	if t == nil {
		panic("nil transport passed to NewDispatcher")
	}
	return &Dispatcher{Transport: t}
}

// RenterConfirmation builds the mail sent to the renter after a
// successful reservation.
func RenterConfirmation(b model.Booking, l model.Listing) (subject, html string) {
	subject = "Booking confirmed: " + b.Reference
	html = fmt.Sprintf(
		`<p>Hi %s,</p><p>Your booking at <b>%s</b> is registered.</p>`+
			`<p>Reference: <b>%s</b><br/>Check-in: %s<br/>Check-out: %s<br/>Total: %d.%02d</p>`+
			`<p>Your invoice is attached.</p>`,
		b.RenterName, l.Name, b.Reference,
		b.CheckIn.UTC().Format("02 Jan 2006"), b.CheckOut.UTC().Format("02 Jan 2006"),
		b.TotalAmountCents/100, b.TotalAmountCents%100)
	return subject, html
}

// OwnerNotification builds the mail sent to the listing owner.
func OwnerNotification(b model.Booking, l model.Listing) (subject, html string) {
	subject = "New booking on " + l.Name + ": " + b.Reference
	html = fmt.Sprintf(
		`<p>A new booking was made on your listing <b>%s</b>.</p>`+
			`<p>Reference: <b>%s</b><br/>Guest: %s (%s)<br/>Check-in: %s<br/>Check-out: %s</p>`,
		l.Name, b.Reference, b.RenterName, b.RenterContact,
		b.CheckIn.UTC().Format("02 Jan 2006"), b.CheckOut.UTC().Format("02 Jan 2006"))
	return subject, html
}

// DispatchBooking sends the renter confirmation (with the invoice
// attached) and the owner notification. Both sends are attempted even
// if the first fails; failures are logged and returned as a count so
// the caller can note them without failing the reservation.
func (d *Dispatcher) DispatchBooking(b model.Booking, l model.Listing, renterEmail, ownerEmail, invoicePath string) int {
	failed := 0
	subj, html := RenterConfirmation(b, l)
	msg := Message{To: renterEmail, Subject: subj, HTML: html}
	if invoicePath != "" {
		msg.Attachments = []string{invoicePath}
	}
	if err := d.Transport.Send(msg); err != nil {
		log.Printf("mailer: renter mail for booking %s failed: %v", b.Reference, err)
		failed++
	}
	subj, html = OwnerNotification(b, l)
	if err := d.Transport.Send(Message{To: ownerEmail, Subject: subj, HTML: html}); err != nil {
		log.Printf("mailer: owner mail for booking %s failed: %v", b.Reference, err)
		failed++
	}
	return failed
}
