package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartpg/booking-server/internal/blob"
	"github.com/smartpg/booking-server/internal/model"
	"github.com/smartpg/booking-server/internal/repository"
)

// maxPhotoBytes caps a single listing photo upload.
const maxPhotoBytes = 5 << 20

// ListingHandler serves the public browse endpoints and the owner-side
// listing management endpoints.
type ListingHandler struct {
	Listings *repository.ListingRepo
	Bookings *repository.BookingRepo
	Blobs    blob.Store
}

func NewListingHandler(l *repository.ListingRepo, b *repository.BookingRepo, blobs blob.Store) *ListingHandler {
	return &ListingHandler{Listings: l, Bookings: b, Blobs: blobs}
}

type listingReq struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	City           string `json:"city"`
	RentCents      uint32 `json:"rent_cents"`
	AvailableRooms uint32 `json:"available_rooms"`
	Facilities     string `json:"facilities"`
	Status         string `json:"status"`
}

// Browse returns ACTIVE listings, optionally filtered by ?city= and
// capped by ?limit=.  Public, no auth; sits behind the response cache.
func (h *ListingHandler) Browse(c echo.Context) error {
	city := strings.TrimSpace(c.QueryParam("city"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listings, err := h.Listings.ListActive(ctx, city, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]listingJSON, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingToJSON(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": out})
}

// Get returns a single listing with its photo URLs.  Public; inactive
// listings are still retrievable by ID so existing bookings keep a
// resolvable target.
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	photos, err := h.Listings.ListPhotos(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := listingToJSON(*l)
	for _, p := range photos {
		out.Photos = append(out.Photos, p.URL)
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a listing owned by the authenticated owner.  New listings
// default to ACTIVE unless INACTIVE is requested explicitly.
func (h *ListingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.City = strings.TrimSpace(req.City)
	if req.Name == "" || req.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/city required"})
	}
	if req.RentCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rent_cents must be positive"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != model.ListingInactive {
		status = model.ListingActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l := &model.Listing{
		OwnerID:        uid,
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		RentCents:      req.RentCents,
		AvailableRooms: req.AvailableRooms,
		Facilities:     req.Facilities,
		Status:         status,
	}
	if err := h.Listings.Create(ctx, l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create listing failed"})
	}
	return c.JSON(http.StatusCreated, listingToJSON(*l))
}

// Update rewrites a listing.  Only its owner or an admin may touch it.
func (h *ListingHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RentCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rent_cents must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if status := h.authorizeOwner(c, l.OwnerID); status != 0 {
		return c.JSON(status, echo.Map{"error": "forbidden"})
	}

	l.Name = strings.TrimSpace(req.Name)
	l.Address = req.Address
	l.City = strings.TrimSpace(req.City)
	l.RentCents = req.RentCents
	l.AvailableRooms = req.AvailableRooms
	l.Facilities = req.Facilities
	if s := strings.ToUpper(strings.TrimSpace(req.Status)); s == model.ListingActive || s == model.ListingInactive {
		l.Status = s
	}
	if l.Name == "" || l.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/city required"})
	}
	if err := h.Listings.Update(ctx, l); err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, listingToJSON(*l))
}

// Delete removes a listing.  Bookings against it are kept; their
// cancellation tolerates the missing listing.
func (h *ListingHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if status := h.authorizeOwner(c, l.OwnerID); status != 0 {
		return c.JSON(status, echo.Map{"error": "forbidden"})
	}
	if err := h.Listings.Delete(ctx, id); err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Mine returns the authenticated owner's listings.
func (h *ListingHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listings, err := h.Listings.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]listingJSON, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingToJSON(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": out})
}

// UploadPhoto accepts a multipart "photo" field, stores the blob and
// records its public URL against the listing.
func (h *ListingHandler) UploadPhoto(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if status := h.authorizeOwner(c, l.OwnerID); status != 0 {
		return c.JSON(status, echo.Map{"error": "forbidden"})
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file required"})
	}
	if fh.Size > maxPhotoBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "photo too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo unreadable"})
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo unreadable"})
	}

	url, err := h.Blobs.Put(ctx, fh.Filename, data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store photo failed"})
	}
	if _, err := h.Listings.AddPhoto(ctx, id, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save photo failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}

// ListingBookings returns all bookings against one of the owner's
// listings, so owners can see who reserved their rooms.
func (h *ListingHandler) ListingBookings(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if status := h.authorizeOwner(c, l.OwnerID); status != 0 {
		return c.JSON(status, echo.Map{"error": "forbidden"})
	}
	bookings, err := h.Bookings.ListByListing(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookingsToJSON(bookings)})
}

// authorizeOwner returns 0 when the caller owns the resource or is an
// admin, otherwise the HTTP status to respond with.
func (h *ListingHandler) authorizeOwner(c echo.Context, ownerID uint64) int {
	uid, err := getUserID(c)
	if err != nil {
		return http.StatusUnauthorized
	}
	if uid == ownerID || getRole(c) == model.RoleAdmin {
		return 0
	}
	return http.StatusForbidden
}
