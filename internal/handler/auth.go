package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Login    string `json:"login"` // email or username
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Username: u.Username, Name: u.Name, Role: u.Role}
}

// establishSession creates the session row and sets both identity
// cookies: the opaque session id and the access token referencing it.
func (h *AuthHandler) establishSession(c echo.Context, ctx context.Context, u model.User) error {
	sid, err := utils.NewSessionID()
	if err != nil {
		return err
	}
	csrf, err := utils.NewCSRFToken()
	if err != nil {
		return err
	}
	exp := time.Now().UTC().Add(time.Duration(h.Cfg.SessionTTLHours) * time.Hour)
	if err := h.Sessions.Create(ctx, u.ID, utils.HashSessionID(sid), csrf, exp); err != nil {
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, utils.HashSessionID(sid), h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	secure := h.Cfg.Env != "dev"
	c.SetCookie(&http.Cookie{
		Name: middleware.SessionCookie, Value: sid, Path: "/",
		Expires: exp, HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name: middleware.TokenCookie, Value: access.Token, Path: "/",
		Expires: access.Exp, HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Register creates a local account and signs the user in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.CreateLocal(ctx, req.Email, req.Username, req.Name, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch err {
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case repository.ErrUsernameExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if err := h.establishSession(c, ctx, u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(u)})
}

// Login verifies local credentials and establishes a session. The same
// 401 is returned for unknown logins and wrong passwords.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Login)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// OAuth-linked accounts have no local credential to verify.
	if !u.IsLocal() || !utils.VerifyPassword(*u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err := h.establishSession(c, ctx, u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Logout revokes the current session. Both proofs die with the session
// row, so a still-unexpired access token no longer authenticates.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, ok := c.Get(middleware.CtxSession).(model.Session)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.RevokeByHash(ctx, sess.IDHash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	expire := time.Unix(0, 0)
	c.SetCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "", Path: "/", Expires: expire, HttpOnly: true})
	c.SetCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "", Path: "/", Expires: expire, HttpOnly: true})
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// LogoutAll revokes every session the user holds, on this device and
// any other. Useful after a password change or a suspected leak.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	expire := time.Unix(0, 0)
	c.SetCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "", Path: "/", Expires: expire, HttpOnly: true})
	c.SetCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "", Path: "/", Expires: expire, HttpOnly: true})
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the authenticated user plus which proof authenticated the
// request ("session" or "jwt").
func (h *AuthHandler) Me(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": toUserPart(u),
		"via":  c.Get(middleware.CtxVia),
	})
}

// CSRFToken hands the per-session anti-forgery token to the client,
// which must echo it in the X-CSRF-Token header on state-changing
// requests.
func (h *AuthHandler) CSRFToken(c echo.Context) error {
	sess, ok := c.Get(middleware.CtxSession).(model.Session)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"csrfToken": sess.CSRFToken})
}
