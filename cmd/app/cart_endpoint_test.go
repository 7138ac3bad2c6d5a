package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/cart"
)

func newCartTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := cart.NewMemoryStore(time.Hour)
	t.Cleanup(func() { store.Close() })

	e := echo.New()
	registerCartRoutes(e.Group("/api"), store)
	return e
}

func TestCartEndpoint_MintsSessionCookie(t *testing.T) {
	e := newCartTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cartCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCartEndpoint_AddAndFetchRoundTrip(t *testing.T) {
	e := newCartTestServer(t)

	body := `{"id":"pkg-1","productName":"Total Essential","productType":"essential","quantity":2,"unitPrice":79.99}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	// same cookie sees the same cart
	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalItems":2`)
	assert.Contains(t, rec.Body.String(), "159.98")

	// a fresh visitor does not
	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"totalItems":0`)
}

func TestCartEndpoint_InvalidItemRejected(t *testing.T) {
	e := newCartTestServer(t)

	body := `{"id":"","productName":"","quantity":1,"unitPrice":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
