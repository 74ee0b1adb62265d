package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartpg/booking-server/internal/model"
	"github.com/smartpg/booking-server/internal/repository"
)

// AdminHandler serves the moderation and dashboard surface.  Every
// route is behind RequireRole(ADMIN).
type AdminHandler struct {
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Listings *repository.ListingRepo
	Bookings *repository.BookingRepo
}

func NewAdminHandler(u *repository.UserRepo, t *repository.TokenRepo, l *repository.ListingRepo, b *repository.BookingRepo) *AdminHandler {
	return &AdminHandler{Users: u, Tokens: t, Listings: l, Bookings: b}
}

// Dashboard returns aggregate counts for the admin overview screen.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tenants, err := h.Users.CountByRole(ctx, model.RoleTenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	owners, err := h.Users.CountByRole(ctx, model.RoleOwner)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	activeListings, err := h.Listings.CountActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	bookings, err := h.Bookings.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tenants":         tenants,
		"owners":          owners,
		"active_listings": activeListings,
		"bookings":        bookings,
	})
}

// ListUsers returns every account, without password hashes.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type userRow struct {
		ID        uint64 `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Role      string `json:"role"`
		IsBlocked bool   `json:"is_blocked"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]userRow, 0, len(users))
	for _, u := range users {
		out = append(out, userRow{
			ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone,
			Role: u.Role, IsBlocked: u.IsBlocked,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type blockReq struct {
	Blocked bool `json:"blocked"`
}

// SetUserBlocked blocks or unblocks an account.  Admin accounts are
// exempt; a blocked user can no longer log in or refresh.
func (h *AdminHandler) SetUserBlocked(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req blockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Role == model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin accounts cannot be blocked"})
	}
	if err := h.Users.SetBlocked(ctx, id, req.Blocked); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if req.Blocked {
		// Kill existing sessions too; access tokens expire on their own.
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_blocked": req.Blocked})
}

// DeleteUser removes an account.  Their bookings stay in the ledger.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Role == model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin accounts cannot be deleted"})
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteListing force-removes any listing, regardless of owner.
func (h *AdminHandler) DeleteListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Listings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings returns every booking in the system, newest first.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookingsToJSON(bookings)})
}
