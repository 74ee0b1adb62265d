package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartpg/booking-server/internal/model"
	"github.com/smartpg/booking-server/internal/payment"
	"github.com/smartpg/booking-server/internal/repository"
	"github.com/smartpg/booking-server/internal/service"
)

// PaymentHandler drives the two-step payment flow: create a gateway
// order for a booking, then verify the completed payment and record it.
type PaymentHandler struct {
	Gateway    payment.Gateway
	Reconciler *service.Reconciler
	Bookings   *repository.BookingRepo
	Payments   *repository.PaymentRepo
}

func NewPaymentHandler(g payment.Gateway, rec *service.Reconciler, b *repository.BookingRepo, p *repository.PaymentRepo) *PaymentHandler {
	return &PaymentHandler{Gateway: g, Reconciler: rec, Bookings: b, Payments: p}
}

type createOrderReq struct {
	BookingID uint64 `json:"booking_id"`
	Currency  string `json:"currency"`
}

type verifyReq struct {
	BookingID  uint64 `json:"booking_id"`
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}

// CreateOrder registers a payment intent for the caller's booking.
// The amount always comes from the booking record, never from the
// request body.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil || req.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.RenterID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if b.BookingState == model.BookingCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is cancelled"})
	}
	if b.PaymentState == model.PaymentCompleted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking already paid"})
	}

	order, err := h.Gateway.CreateOrder(ctx, b.TotalAmountCents, req.Currency, b.Reference)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "gateway order failed"})
	}
	return c.JSON(http.StatusCreated, order)
}

// Verify checks the completed gateway payment and records the
// transaction.  Replaying the same payment_ref is rejected with 409
// and leaves the booking untouched.
func (h *PaymentHandler) Verify(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.PaymentRef = strings.TrimSpace(req.PaymentRef)
	if req.BookingID == 0 || req.OrderID == "" || req.PaymentRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id/order_id/payment_ref required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.RenterID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if b.BookingState == model.BookingCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
	}

	// Fast path: a replayed reference is rejected before hitting the
	// gateway.  The unique index still backs this under races.
	if _, err := h.Payments.GetByTransactionRef(ctx, req.PaymentRef); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "transaction already recorded"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Gateway.VerifyPayment(ctx, req.OrderID, req.PaymentRef); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment verification failed"})
	}

	confirmed, err := h.Reconciler.ConfirmPayment(ctx, service.ConfirmPaymentInput{
		BookingID:      req.BookingID,
		UserID:         uid,
		AmountCents:    b.TotalAmountCents,
		Gateway:        "mock",
		TransactionRef: req.PaymentRef,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateTransaction):
			return c.JSON(http.StatusConflict, echo.Map{"error": "transaction already recorded"})
		case errors.Is(err, repository.ErrBookingCancelled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record payment failed"})
	}
	return c.JSON(http.StatusOK, bookingToJSON(*confirmed))
}
