package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartpg/booking-server/internal/model"
)

// dateLayout is the wire format for check-in/check-out dates.
const dateLayout = "2006-01-02"

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT numeric claims decode as float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok {
		return role
	}
	return ""
}

// listingJSON is the wire shape of a listing.
type listingJSON struct {
	ID             uint64   `json:"id"`
	OwnerID        uint64   `json:"owner_id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	RentCents      uint32   `json:"rent_cents"`
	AvailableRooms uint32   `json:"available_rooms"`
	Facilities     string   `json:"facilities"`
	Status         string   `json:"status"`
	Photos         []string `json:"photos,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

func listingToJSON(l model.Listing) listingJSON {
	return listingJSON{
		ID:             l.ID,
		OwnerID:        l.OwnerID,
		Name:           l.Name,
		Address:        l.Address,
		City:           l.City,
		RentCents:      l.RentCents,
		AvailableRooms: l.AvailableRooms,
		Facilities:     l.Facilities,
		Status:         l.Status,
		CreatedAt:      l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// bookingJSON is the wire shape of a booking.
type bookingJSON struct {
	ID               uint64 `json:"id"`
	RenterID         uint64 `json:"renter_id"`
	ListingID        uint64 `json:"listing_id"`
	RenterName       string `json:"renter_name"`
	RenterContact    string `json:"renter_contact"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	TotalAmountCents uint32 `json:"total_amount_cents"`
	PaymentState     string `json:"payment_state"`
	BookingState     string `json:"booking_state"`
	Reference        string `json:"reference"`
	CreatedAt        string `json:"created_at"`
}

func bookingToJSON(b model.Booking) bookingJSON {
	return bookingJSON{
		ID:               b.ID,
		RenterID:         b.RenterID,
		ListingID:        b.ListingID,
		RenterName:       b.RenterName,
		RenterContact:    b.RenterContact,
		CheckIn:          b.CheckIn.UTC().Format(dateLayout),
		CheckOut:         b.CheckOut.UTC().Format(dateLayout),
		TotalAmountCents: b.TotalAmountCents,
		PaymentState:     b.PaymentState,
		BookingState:     b.BookingState,
		Reference:        b.Reference,
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func bookingsToJSON(bs []model.Booking) []bookingJSON {
	out := make([]bookingJSON, 0, len(bs))
	for _, b := range bs {
		out = append(out, bookingToJSON(b))
	}
	return out
}
