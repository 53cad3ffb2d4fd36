package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/utils"
)

// Cookie names shared with the auth handler.
const (
	SessionCookie = "session_id"
	TokenCookie   = "access_token"
)

// Context keys populated by Identity.
const (
	CtxUserID  = "user_id"
	CtxRole    = "role"
	CtxVia     = "via"     // "session" or "jwt"
	CtxSession = "session" // model.Session of the authenticated caller
)

// Identity resolves the caller's identity from the two proofs the
// system issues: the opaque session cookie is checked first, then the
// access token (cookie or Authorization header). Both paths validate
// the underlying session row, so a revoked session authenticates via
// neither proof. The middleware never rejects a request by itself;
// unauthenticated requests simply continue without identity and
// RequireAuth or a role gate decides further down the chain.
func Identity(cfg config.Config, sessions *repository.SessionRepo, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			// Session proof first.
			if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				hash := utils.HashSessionID(cookie.Value)
				if sess, err := sessions.Validate(ctx, hash); err == nil {
					if u, err := users.GetByID(ctx, sess.UserID); err == nil {
						c.Set(CtxUserID, u.ID)
						c.Set(CtxRole, u.Role)
						c.Set(CtxVia, "session")
						c.Set(CtxSession, sess)
						return next(c)
					}
				}
			}

			// Bearer token fallback: cookie or Authorization header.
			raw := ""
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				raw = cookie.Value
			}
			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			}
			if raw != "" {
				if claims, err := utils.ParseAccessToken(cfg.JWTSecret, raw); err == nil {
					// The token is only a reference: the session it names
					// must still be alive.
					if sess, err := sessions.Validate(ctx, claims.SessionHash); err == nil && sess.UserID == claims.UserID {
						c.Set(CtxUserID, claims.UserID)
						c.Set(CtxRole, claims.Role)
						c.Set(CtxVia, "jwt")
						c.Set(CtxSession, sess)
					}
				}
			}
			return next(c)
		}
	}
}

// RequireAuth rejects requests that carry no resolved identity.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(CtxUserID).(uint64); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated caller's id, or 0 when anonymous.
func UserID(c echo.Context) uint64 {
	if v, ok := c.Get(CtxUserID).(uint64); ok {
		return v
	}
	return 0
}

// Role returns the authenticated caller's role, or "" when anonymous.
func Role(c echo.Context) string {
	if v, ok := c.Get(CtxRole).(string); ok {
		return v
	}
	return ""
}
