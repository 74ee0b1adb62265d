package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartpg/booking-server/internal/invoice"
	"github.com/smartpg/booking-server/internal/mailer"
	"github.com/smartpg/booking-server/internal/model"
	"github.com/smartpg/booking-server/internal/queue"
	"github.com/smartpg/booking-server/internal/repository"
	"github.com/smartpg/booking-server/internal/service"
)

// BookingHandler serves tenant-facing booking endpoints.  Capacity and
// state transitions go through the reconciler; everything after a
// successful reservation (invoice, mail, event) is best-effort and
// never fails the request.
type BookingHandler struct {
	Reconciler *service.Reconciler
	Bookings   *repository.BookingRepo
	Listings   *repository.ListingRepo
	Users      *repository.UserRepo
	Payments   *repository.PaymentRepo
	Dispatcher *mailer.Dispatcher
}

func NewBookingHandler(rec *service.Reconciler, b *repository.BookingRepo, l *repository.ListingRepo,
	u *repository.UserRepo, p *repository.PaymentRepo, d *mailer.Dispatcher) *BookingHandler {
	return &BookingHandler{Reconciler: rec, Bookings: b, Listings: l, Users: u, Payments: p, Dispatcher: d}
}

type createBookingReq struct {
	ListingID     uint64 `json:"listing_id"`
	RenterName    string `json:"renter_name"`
	RenterContact string `json:"renter_contact"`
	CheckIn       string `json:"check_in"`  // 2006-01-02
	CheckOut      string `json:"check_out"` // 2006-01-02
}

// Create reserves one room for the authenticated tenant.  A full room
// is rejected with 400 and the winner of a race on the last room is
// decided by the conditional decrement, not by this handler.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ListingID == 0 || req.RenterName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing_id/renter_name required"})
	}
	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Reconciler.Reserve(ctx, service.ReserveInput{
		ListingID:     req.ListingID,
		RenterID:      uid,
		RenterName:    req.RenterName,
		RenterContact: req.RenterContact,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPeriod), errors.Is(err, service.ErrAmountTooLarge):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrNoCapacity):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no rooms available"})
		case errors.Is(err, repository.ErrListingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	h.notifyBooking(ctx, *b)

	return c.JSON(http.StatusCreated, bookingToJSON(*b))
}

// notifyBooking performs the post-reservation side effects: render the
// invoice, mail renter and owner, publish the booking.created event.
// Every step is logged-only on failure.
func (h *BookingHandler) notifyBooking(ctx context.Context, b model.Booking) {
	listing, err := h.Listings.GetByID(ctx, b.ListingID)
	if err != nil {
		log.Printf("booking %s: listing lookup for notification failed: %v", b.Reference, err)
		return
	}
	renter, err := h.Users.GetByID(ctx, b.RenterID)
	if err != nil {
		log.Printf("booking %s: renter lookup for notification failed: %v", b.Reference, err)
		return
	}
	owner, err := h.Users.GetByID(ctx, listing.OwnerID)
	if err != nil {
		log.Printf("booking %s: owner lookup for notification failed: %v", b.Reference, err)
		return
	}

	invoicePath := ""
	if pdf, err := invoice.Render(b, *listing, renter.Email); err != nil {
		log.Printf("booking %s: invoice render failed: %v", b.Reference, err)
	} else {
		f, err := os.CreateTemp("", "invoice-*.pdf")
		if err != nil {
			log.Printf("booking %s: invoice temp file failed: %v", b.Reference, err)
		} else {
			if _, err := f.Write(pdf); err != nil {
				log.Printf("booking %s: invoice write failed: %v", b.Reference, err)
			} else {
				invoicePath = f.Name()
			}
			f.Close()
		}
	}

	if failed := h.Dispatcher.DispatchBooking(b, *listing, renter.Email, owner.Email, invoicePath); failed > 0 {
		log.Printf("booking %s: %d notification mail(s) failed", b.Reference, failed)
	}
	if invoicePath != "" {
		_ = os.Remove(invoicePath)
	}

	_ = queue.PublishBookingEvent(ctx, queue.BookingEvent{
		Type:             queue.TypeBookingCreated,
		BookingID:        b.ID,
		Reference:        b.Reference,
		RenterID:         b.RenterID,
		ListingID:        b.ListingID,
		ListingName:      listing.Name,
		CheckIn:          b.CheckIn.UTC().Format(dateLayout),
		CheckOut:         b.CheckOut.UTC().Format(dateLayout),
		TotalAmountCents: b.TotalAmountCents,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	})
}

// Cancel cancels a booking.  Repeat cancellations return the cancelled
// record again with 200; capacity is only released on the first one.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Reconciler.Cancel(ctx, id, uid, getRole(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	_ = queue.PublishBookingEvent(ctx, queue.BookingEvent{
		Type:             queue.TypeBookingCancelled,
		BookingID:        b.ID,
		Reference:        b.Reference,
		RenterID:         b.RenterID,
		ListingID:        b.ListingID,
		CheckIn:          b.CheckIn.UTC().Format(dateLayout),
		CheckOut:         b.CheckOut.UTC().Format(dateLayout),
		TotalAmountCents: b.TotalAmountCents,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, bookingToJSON(*b))
}

// Mine returns the authenticated tenant's bookings, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListByRenter(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookingsToJSON(bookings)})
}

// PaymentHistory lists the payments recorded against a booking.  Only
// the renter or an admin may see them.
func (h *BookingHandler) PaymentHistory(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.RenterID != uid && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	records, err := h.Payments.ListByBooking(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type paymentRow struct {
		ID             uint64 `json:"id"`
		AmountCents    uint32 `json:"amount_cents"`
		Gateway        string `json:"gateway"`
		TransactionRef string `json:"transaction_ref"`
		Status         string `json:"status"`
		CreatedAt      string `json:"created_at"`
	}
	out := make([]paymentRow, 0, len(records))
	for _, p := range records {
		out = append(out, paymentRow{
			ID: p.ID, AmountCents: p.AmountCents, Gateway: p.Gateway,
			TransactionRef: p.TransactionRef, Status: p.Status,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}

// Invoice streams the booking invoice PDF.  Only the renter or an
// admin may download it.  Invoices are rendered on demand from the
// booking record, so the same booking always yields the same bytes.
func (h *BookingHandler) Invoice(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.RenterID != uid && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	listing, err := h.Listings.GetByID(ctx, b.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing no longer exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	renter, err := h.Users.GetByID(ctx, b.RenterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	pdf, err := invoice.Render(*b, *listing, renter.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invoice render failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="invoice-`+b.Reference+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
