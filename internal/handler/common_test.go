package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpg/booking-server/internal/model"
)

func ctxWith(t *testing.T, key string, val interface{}) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if val != nil {
		c.Set(key, val)
	}
	return c
}

func TestGetUserIDAcceptsJWTFloat(t *testing.T) {
	// Numeric JWT claims decode as float64.
	id, err := getUserID(ctxWith(t, "user_id", float64(42)))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestGetUserIDAcceptsOtherNumerics(t *testing.T) {
	for _, v := range []interface{}{uint64(7), int(7), int64(7), "7"} {
		id, err := getUserID(ctxWith(t, "user_id", v))
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
	}
}

func TestGetUserIDRejectsGarbage(t *testing.T) {
	_, err := getUserID(ctxWith(t, "user_id", nil))
	assert.Error(t, err)
	_, err = getUserID(ctxWith(t, "user_id", "not-a-number"))
	assert.Error(t, err)
}

func TestBookingToJSONDateFormats(t *testing.T) {
	b := model.Booking{
		ID:        1,
		CheckIn:   time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, time.August, 20, 9, 30, 0, 0, time.UTC),
	}
	j := bookingToJSON(b)
	assert.Equal(t, "2026-09-01", j.CheckIn)
	assert.Equal(t, "2026-09-11", j.CheckOut)
	assert.Equal(t, "2026-08-20T09:30:00Z", j.CreatedAt)
}
