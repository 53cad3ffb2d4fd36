package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-hub/internal/model"
)

func csrfInvoke(t *testing.T, method, path, header string, sess *model.Session) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set(CSRFHeader, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(CtxSession, *sess)
	}

	h := CSRF("/api/oauth")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec
}

func TestCSRFSafeMethodsExempt(t *testing.T) {
	sess := &model.Session{CSRFToken: "tok"}
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		rec := csrfInvoke(t, m, "/api/posts", "", sess)
		assert.Equal(t, http.StatusOK, rec.Code, m)
	}
}

func TestCSRFExemptPrefix(t *testing.T) {
	sess := &model.Session{CSRFToken: "tok"}
	rec := csrfInvoke(t, http.MethodPost, "/api/oauth/google/callback", "", sess)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFAnonymousPassesThrough(t *testing.T) {
	// No resolved session means no ambient credentials to protect.
	rec := csrfInvoke(t, http.MethodPost, "/api/posts", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMismatchRejected(t *testing.T) {
	sess := &model.Session{CSRFToken: "expected"}

	rec := csrfInvoke(t, http.MethodPost, "/api/posts", "", sess)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = csrfInvoke(t, http.MethodPost, "/api/posts", "wrong", sess)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"csrf token mismatch"}`, rec.Body.String())
}

func TestCSRFMatchAccepted(t *testing.T) {
	sess := &model.Session{CSRFToken: "expected"}
	rec := csrfInvoke(t, http.MethodPost, "/api/posts", "expected", sess)
	assert.Equal(t, http.StatusOK, rec.Code)
}
