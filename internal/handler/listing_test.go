package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpg/booking-server/internal/model"
)

func ownerContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/v1/listings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(3))
	c.Set("role", model.RoleOwner)
	return c, rec
}

func TestCreateListingRejectsZeroRent(t *testing.T) {
	h := NewListingHandler(nil, nil, nil)
	c, rec := ownerContext(t, http.MethodPost,
		`{"name":"Green Nest PG","city":"Pune","rent_cents":0,"available_rooms":3}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "rent_cents")
}

func TestUpdateListingRejectsZeroRent(t *testing.T) {
	// The rent check runs before the listing lookup, so no store access
	// happens for an invalid body.
	h := NewListingHandler(nil, nil, nil)
	c, rec := ownerContext(t, http.MethodPut,
		`{"name":"Green Nest PG","city":"Pune","rent_cents":0}`)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "rent_cents")
}
