package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRemoteAddr = "1.2.3.4:1234"

func serveLimited(t *testing.T, handler echo.HandlerFunc, remoteAddr string) int {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()

	require.NoError(t, callHandler(handler, e.NewContext(req, rec)))
	return rec.Code
}

func TestRateLimiterAllowsRequestsUnderLimit(t *testing.T) {
	handler := newRateLimiter(10, 3)(func(c echo.Context) error {
		return c.NoContent(http.StatusMovedPermanently)
	})

	for range 3 {
		assert.Equal(t, http.StatusMovedPermanently, serveLimited(t, handler, testRemoteAddr))
	}
}

func TestRateLimiterBlocksExcessiveRequests(t *testing.T) {
	handler := newRateLimiter(0.01, 1)(func(c echo.Context) error {
		return c.NoContent(http.StatusMovedPermanently)
	})

	assert.Equal(t, http.StatusMovedPermanently, serveLimited(t, handler, testRemoteAddr))
	assert.Equal(t, http.StatusTooManyRequests, serveLimited(t, handler, testRemoteAddr))
}

func TestRateLimiterDifferentIPsAreIndependent(t *testing.T) {
	handler := newRateLimiter(0.01, 1)(func(c echo.Context) error {
		return c.NoContent(http.StatusMovedPermanently)
	})

	assert.Equal(t, http.StatusMovedPermanently, serveLimited(t, handler, testRemoteAddr))
	assert.Equal(t, http.StatusMovedPermanently, serveLimited(t, handler, "5.6.7.8:5678"))
	assert.Equal(t, http.StatusTooManyRequests, serveLimited(t, handler, testRemoteAddr))
}
