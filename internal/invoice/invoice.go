// Package invoice renders a booking into a fixed-layout PDF document.
// Render is a pure function of its inputs: no network, no store access,
// and the PDF creation date is pinned to the booking's creation time so
// two renders of the same booking are byte-identical. Callers own the
// transient-file lifecycle when they need the document on disk (write,
// attach to an email, delete); this package only produces bytes.
package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/smartpg/booking-server/internal/model"
)

const dateLayout = "02 Jan 2006"

// Render produces the invoice PDF for a booking. The listing supplies
// the address block and the renter email is printed alongside the
// contact captured at booking time. Amounts are stored in cents and
// printed with two decimals.
func Render(b model.Booking, l model.Listing, renterEmail string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Pinned metadata keeps repeated renders byte-identical.
	pdf.SetCreationDate(b.CreatedAt.UTC())
	pdf.SetTitle("Booking Invoice "+b.Reference, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Smart PG Management", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, "Booking Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Reference line
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Reference: "+b.Reference, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Renter identity
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Billed to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, b.RenterName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, b.RenterContact, "", 1, "L", false, 0, "")
	if renterEmail != "" {
		pdf.CellFormat(0, 6, renterEmail, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Listing address
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Accommodation", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, l.Name, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, l.Address, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, l.City, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Stay and amount table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 8, "Check-in", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Check-out", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Total", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(60, 8, b.CheckIn.UTC().Format(dateLayout), "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, b.CheckOut.UTC().Format(dateLayout), "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, formatAmount(b.TotalAmountCents), "1", 1, "C", false, 0, "")
	pdf.Ln(8)

	// Footer
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "This invoice was generated from your booking record and can be re-issued at any time.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatAmount prints cents as a decimal amount without assuming a
// currency; the marketplace is currency-agnostic.
func formatAmount(cents uint32) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
