package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/utils"
)

const (
	oauthStateCookie = "oauth_state"
	googleProvider   = "google"
	googleUserInfo   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthHandler implements the Google OAuth flow. The handshake itself
// (redirect, code exchange, token refresh) is delegated to the oauth2
// library; this handler owns only identity linking and session setup.
type OAuthHandler struct {
	Auth  *AuthHandler
	OAuth *oauth2.Config
}

func NewOAuthHandler(cfg config.Config, auth *AuthHandler) *OAuthHandler {
	return &OAuthHandler{
		Auth: auth,
		OAuth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSec,
			RedirectURL:  cfg.GoogleRedirect,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
	}
}

// Login redirects the browser to the provider's consent page. A random
// state value is stored in a short-lived cookie and verified on return.
func (h *OAuthHandler) Login(c echo.Context) error {
	state, err := utils.NewCSRFToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "state generation failed"})
	}
	c.SetCookie(&http.Cookie{
		Name: oauthStateCookie, Value: state, Path: "/",
		Expires: time.Now().Add(10 * time.Minute), HttpOnly: true,
	})
	return c.Redirect(http.StatusFound, h.OAuth.AuthCodeURL(state))
}

type googleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Callback handles the provider redirect: it verifies the state,
// exchanges the code, fetches the user's profile and finds or creates
// the linked account, then establishes a session exactly like local
// login. An email already owned by a password account is a conflict;
// identities are never linked silently.
func (h *OAuthHandler) Callback(c echo.Context) error {
	stateCookie, err := c.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || c.QueryParam("state") != stateCookie.Value {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "oauth state mismatch"})
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tok, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "code exchange failed"})
	}
	resp, err := h.OAuth.Client(ctx, tok).Get(googleUserInfo)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile fetch failed"})
	}
	defer func() { _ = resp.Body.Close() }()
	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil || gu.ID == "" || gu.Email == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile decode failed"})
	}

	users := h.Auth.Users
	u, err := users.GetByOAuth(ctx, googleProvider, gu.ID)
	switch err {
	case nil:
		// Known identity: sync the display name on login.
		if u.Name != gu.Name && gu.Name != "" {
			_ = users.UpdateProfile(ctx, u.ID, gu.Name)
			u.Name = gu.Name
		}
	case sql.ErrNoRows:
		inUse, err := users.EmailInUse(ctx, gu.Email)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if inUse {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered with a password"})
		}
		uid, err := users.CreateOAuth(ctx, gu.Email, usernameFromEmail(gu.Email), gu.Name, googleProvider, gu.ID)
		if err != nil {
			if err == repository.ErrUsernameExists {
				return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
		u, err = users.GetByID(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Auth.establishSession(c, ctx, u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	c.SetCookie(&http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true})
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// usernameFromEmail derives a handle for first-time OAuth users. A
// numeric suffix is not attempted here; collisions surface as 409 from
// the unique index and the user registers a handle explicitly.
func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
