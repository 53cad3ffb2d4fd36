package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-hub/internal/config"
)

func TestEncodeDecodePayload(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`{"players":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)

	// Header length pointing past the buffer end.
	bs, err := encodePayload(200, http.Header{"A": {"b"}}, []byte("x"))
	require.NoError(t, err)
	_, _, _, ok = decodePayload(bs[:9])
	assert.False(t, ok)
}

// The key a writer computes for invalidation must be the same key the
// middleware stores under for a request to that route, or deletes
// silently miss and stale responses survive until TTL.
func TestCacheKeyMatchesRequestKey(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/gallery/active", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/gallery/active")

	assert.Equal(t, CacheKey(cfg, "/api/gallery/active", ""), cacheKeyFrom(cfg, c))

	// Different query strings key separately.
	assert.NotEqual(t,
		CacheKey(cfg, "/api/gallery/active", ""),
		CacheKey(cfg, "/api/gallery/active", "x=1"))
}

func TestEncodeDecodeEmptyBody(t *testing.T) {
	bs, err := encodePayload(http.StatusNoContent, http.Header{}, nil)
	require.NoError(t, err)
	status, _, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)
}
