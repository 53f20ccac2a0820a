package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Avinashkumar1307/project-grap/internal/config"
	"github.com/Avinashkumar1307/project-grap/internal/model"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
	"github.com/Avinashkumar1307/project-grap/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	oauth *oauth2.Config
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	h := &AuthHandler{Cfg: cfg, Users: users}
	if cfg.GoogleClientID != "" {
		h.oauth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return h
}

// ----- DTOs -----

type signupReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issuePair signs a fresh access/refresh pair and stores the refresh digest
// on the user row, invalidating any previously issued refresh token.
func (h *AuthHandler) issuePair(ctx context.Context, uid uint64, email, role string) (utils.Token, utils.Token, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, email, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.Token{}, utils.Token{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, uid, email, role, h.Cfg.RefreshTTLDays)
	if err != nil {
		return utils.Token{}, utils.Token{}, err
	}
	hash := utils.HashToken(refresh.Value)
	if err := h.Users.SetRefreshTokenHash(ctx, uid, &hash); err != nil {
		return utils.Token{}, utils.Token{}, err
	}
	return access, refresh, nil
}

// Signup: create a password account and return tokens immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var first, last *string
	if s := strings.TrimSpace(req.FirstName); s != "" {
		first = &s
	}
	if s := strings.TrimSpace(req.LastName); s != "" {
		last = &s
	}

	uid, err := h.Users.Create(ctx, req.Email, req.Password, first, last, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	access, refresh, err := h.issuePair(ctx, uid, req.Email, model.RoleUser)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, Email: req.Email, Role: model.RoleUser},
		Access:  tokenPart{Token: access.Value, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Value, Expires: refresh.Exp},
	})
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Google-only accounts have no password hash to check against.
	if u.PasswordHash == nil || !utils.VerifyPassword(*u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, refresh, err := h.issuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Value, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Value, Expires: refresh.Exp},
	})
}

// Refresh: validate the refresh token against the stored digest, then rotate.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)

	claims, err := utils.ParseToken(h.Cfg.JWTRefreshSecret, raw)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh"})
	}
	hash := utils.HashToken(raw)
	if u.RefreshTokenHash == nil || *u.RefreshTokenHash != hash {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh"})
	}

	access, refresh, err := h.issuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Value, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Value, Expires: refresh.Exp},
	})
}

// Logout: clear the stored refresh digest so the token can no longer be
// exchanged.  Protected endpoint.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Users.SetRefreshTokenHash(ctx, uid, nil); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Profile: return the full account row of the caller.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, u)
}

// ----- Google OAuth -----

const oauthStateCookie = "oauth_state"

// GoogleLogin redirects the browser to Google's consent page with a random
// state value pinned in a short-lived cookie.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	if h.oauth == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "google login not configured"})
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "state generation failed"})
	}
	state := hex.EncodeToString(buf)
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// GoogleCallback exchanges the authorization code, loads the Google profile
// and finds or creates the matching local account.  An existing account with
// the same email gets the Google subject id linked to it.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if h.oauth == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "google login not configured"})
	}
	stateCookie, err := c.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state mismatch"})
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "code exchange failed"})
	}

	resp, err := h.oauth.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "userinfo fetch failed"})
	}
	defer resp.Body.Close()
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" || info.Email == "" {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "userinfo decode failed"})
	}
	email := strings.ToLower(strings.TrimSpace(info.Email))

	u, err := h.Users.GetByGoogleID(ctx, info.ID)
	switch {
	case err == nil:
		// known federated account
	case err == repository.ErrNotFound:
		u, err = h.Users.GetByEmail(ctx, email)
		if err == nil {
			if linkErr := h.Users.LinkGoogleID(ctx, u.ID, info.ID); linkErr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "link account failed"})
			}
		} else if err == repository.ErrNotFound {
			var first, last *string
			if info.GivenName != "" {
				first = &info.GivenName
			}
			if info.FamilyName != "" {
				last = &info.FamilyName
			}
			uid, createErr := h.Users.CreateGoogle(ctx, email, info.ID, first, last)
			if createErr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
			}
			u, err = h.Users.GetByID(ctx, uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}
		} else {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	access, refresh, err := h.issuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Value, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Value, Expires: refresh.Exp},
	})
}
