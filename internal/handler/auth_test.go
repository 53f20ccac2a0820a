package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avinashkumar1307/project-grap/internal/config"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
	"github.com/Avinashkumar1307/project-grap/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTTLMin:     15,
		RefreshTTLDays:   30,
		BcryptCost:       4, // keep the tests fast
	}
}

func newAuthTest(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuthHandler(testConfig(), repository.NewUserRepo(db)), mock
}

func jsonCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignupCreatesUserAndTokens(t *testing.T) {
	h, mock := newAuthTest(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE users SET refresh_token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/signup",
		`{"email":"Buyer@Example.com","password":"hunter22","first_name":"Asha"}`)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.User.ID)
	assert.Equal(t, "buyer@example.com", resp.User.Email)
	assert.Equal(t, "user", resp.User.Role)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NotEmpty(t, resp.Refresh.Token)

	// the access token must parse against the access secret
	claims, err := utils.ParseToken("access-secret", resp.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupDuplicateEmail(t *testing.T) {
	h, mock := newAuthTest(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&fakeDupError{})

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/signup",
		`{"email":"buyer@example.com","password":"hunter22"}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already exists")
}

type fakeDupError struct{}

func (*fakeDupError) Error() string { return "Error 1062 (23000): Duplicate entry" }

func TestSignupRejectsShortPassword(t *testing.T) {
	h, _ := newAuthTest(t)
	c, rec := jsonCtx(http.MethodPost, "/v1/auth/signup",
		`{"email":"buyer@example.com","password":"abc"}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newAuthTest(t)

	hash, err := utils.HashPassword("correct-horse", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "first_name", "last_name", "phone", "google_id",
			"role", "email_verified", "refresh_token_hash", "created_at", "updated_at",
		}).AddRow(7, "buyer@example.com", hash, nil, nil, nil, nil, "user", true, nil, now, now))

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/login",
		`{"email":"buyer@example.com","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginGoogleOnlyAccount(t *testing.T) {
	h, mock := newAuthTest(t)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "first_name", "last_name", "phone", "google_id",
			"role", "email_verified", "refresh_token_hash", "created_at", "updated_at",
		}).AddRow(7, "buyer@example.com", nil, nil, nil, nil, "g-sub-1", "user", true, nil, now, now))

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/login",
		`{"email":"buyer@example.com","password":"anything"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	h, mock := newAuthTest(t)

	refresh, err := utils.NewRefreshToken("refresh-secret", 7, "buyer@example.com", "user", 30)
	require.NoError(t, err)

	// stored digest does not match: the token was rotated away
	other := utils.HashToken("some other token")
	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "first_name", "last_name", "phone", "google_id",
			"role", "email_verified", "refresh_token_hash", "created_at", "updated_at",
		}).AddRow(7, "buyer@example.com", nil, nil, nil, nil, nil, "user", true, other, now, now))

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+refresh.Value+`"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h, _ := newAuthTest(t)

	// an access token signed with the access secret must not pass as refresh
	access, err := utils.NewAccessToken("access-secret", 7, "buyer@example.com", "user", 15)
	require.NoError(t, err)

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+access.Value+`"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutClearsStoredHash(t *testing.T) {
	h, mock := newAuthTest(t)

	mock.ExpectExec("UPDATE users SET refresh_token_hash=").
		WithArgs(nil, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonCtx(http.MethodPost, "/v1/auth/logout", "")
	c.Set("user_id", uint64(7))
	c.Set("role", "user")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
