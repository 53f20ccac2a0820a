package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avinashkumar1307/project-grap/internal/utils"
)

func runJWT(t *testing.T, secret, authHeader string) (echo.Context, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := JWTAuth(secret)(next)(c)
	return c, rec, err
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 7, "buyer@example.com", "seller", 15)
	require.NoError(t, err)

	c, rec, err := runJWT(t, "secret", "Bearer "+tok.Value)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), c.Get("user_id"))
	assert.Equal(t, "buyer@example.com", c.Get("email"))
	assert.Equal(t, "seller", c.Get("role"))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	_, rec, err := runJWT(t, "secret", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, "x@y.z", "user", 15)
	require.NoError(t, err)

	_, rec, err := runJWT(t, "secret", "Bearer "+tok.Value)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := RequireRole("admin")(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", "admin")
	require.NoError(t, mw(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set("role", "user")
	require.NoError(t, mw(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	// no role at all
	require.NoError(t, mw(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
