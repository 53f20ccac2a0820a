package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avinashkumar1307/project-grap/internal/config"
)

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`{"projects":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)
}

func TestCacheKeyStrategies(t *testing.T) {
	e := echo.New()
	newCtx := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/projects")
		return c
	}
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a := cacheKeyFrom(cfg, newCtx("/v1/projects?category=web"))
	b := cacheKeyFrom(cfg, newCtx("/v1/projects?category=web"))
	c := cacheKeyFrom(cfg, newCtx("/v1/projects?category=ml"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// ignoring the query collapses the keys
	cfg.KeyStrategy = "route"
	assert.Equal(t,
		cacheKeyFrom(cfg, newCtx("/v1/projects?category=web")),
		cacheKeyFrom(cfg, newCtx("/v1/projects?category=ml")))
}

func TestCaptureWriterHonorsLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	n, err := cw.Write([]byte("abcdefgh"))
	require.NoError(t, err)
	assert.Equal(t, 8, n) // the client still gets everything
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, "abcdefgh", rec.Body.String())
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/auth/login")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}
	assert.Equal(t, "rl:ip:203.0.113.9", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:anon", buildRateKey(cfg, c))

	c.Set("user_id", uint64(7))
	assert.Equal(t, "rl:user:7", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip_route"
	assert.Equal(t, "rl:ip:203.0.113.9:route:POST /v1/auth/login", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(5), asInt64(int64(5)))
	assert.Equal(t, int64(5), asInt64(float64(5)))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(0), asInt64("nope"))
}
