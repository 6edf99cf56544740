package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"storefront/internal/auth"
	"storefront/internal/ratelimit"
	"storefront/internal/service"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	const secret = "test-secret"
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if service.IsKind(err, service.KindUnauthorized) {
			_ = c.NoContent(http.StatusUnauthorized)
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, UserFrom(c).ID)
	}, Auth(auth.NewVerifier(secret, "authenticated"), "sb-access-token"))

	token, err := auth.Sign(secret, "authenticated", auth.User{ID: "user-1", Email: "ada@example.com"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: token})
	assert.Equal(t, http.StatusOK, serve(e, req).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(e, httptest.NewRequest(http.MethodGet, "/me", nil)).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	other, err := auth.Sign("other-secret", "authenticated", auth.User{ID: "user-1"}, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(ratelimit.New(ratelimit.NewMemoryStore(), 2, time.Minute), zap.NewNop()))
	e.GET("/api/ping", ok)

	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	}

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"error":"Too many requests"`)
	assert.Contains(t, rec.Body.String(), `"retryAfter":`)

	// A different client has its own window.
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

type brokenStore struct{}

func (brokenStore) Incr(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("redis gone")
}

func TestRateLimitFailsOpen(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(ratelimit.New(brokenStore{}, 1, time.Minute), zap.NewNop()))
	e.GET("/api/ping", ok)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/api/ping", nil)).Code)
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(), SecurityHeaders())
	e.GET("/", ok)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	h := rec.Header()
	assert.Equal(t, "on", h.Get("X-DNS-Prefetch-Control"))
	assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
	assert.Equal(t, "origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Equal(t, "camera=(), microphone=(), geolocation=()", h.Get("Permissions-Policy"))
	assert.Len(t, h.Get(echo.HeaderXRequestID), 36)
}

func TestBlockBots(t *testing.T) {
	e := echo.New()
	e.Use(BlockBots())
	e.GET("/", ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7.2#stable (https://sqlmap.org)")
	rec := serve(e, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestRedirectWWW(t *testing.T) {
	e := echo.New()
	e.Pre(RedirectWWW())
	e.GET("/products", ok)

	req := httptest.NewRequest(http.MethodGet, "http://www.reef-forge.uk/products?category=Frag", nil)
	rec := serve(e, req)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "http://reef-forge.uk/products?category=Frag", rec.Header().Get(echo.HeaderLocation))

	req = httptest.NewRequest(http.MethodGet, "http://reef-forge.uk/products", nil)
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}
