package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedServer() *echo.Echo {
	e := echo.New()
	g := e.Group("/admin")
	g.Use(JWTMiddleware())
	g.Use(AdminOnly)
	g.GET("/ping", func(c echo.Context) error {
		claims := GetClaims(c)
		return c.JSON(http.StatusOK, echo.Map{"email": claims.Email})
	})
	return e
}

func TestJWTMiddleware_AdminTokenPasses(t *testing.T) {
	e := protectedServer()

	token, err := GenerateToken(1, "admin@example.com", "admin", 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestJWTMiddleware_NonAdminRoleForbidden(t *testing.T) {
	e := protectedServer()

	token, err := GenerateToken(2, "user@example.com", "customer", 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTMiddleware_MissingOrGarbageTokenRejected(t *testing.T) {
	e := protectedServer()

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_ExpiredTokenRejected(t *testing.T) {
	e := protectedServer()

	token, err := GenerateToken(3, "admin@example.com", "admin", -1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
