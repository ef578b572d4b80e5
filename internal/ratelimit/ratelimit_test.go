package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/marketwire/server/internal/errors"
)

func newRouter(t *testing.T, formatted string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := NewStore(nil)
	require.NoError(t, err)

	mw, err := Middleware(formatted, store)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/query", mw, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	req.RemoteAddr = ip + ":4321"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestMiddleware_LimitsPerClient(t *testing.T) {
	router := newRouter(t, "2-M")

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)

	rec := hit(router, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeTooManyRequests, resp.Error)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code)
}

func TestMiddleware_InvalidRate(t *testing.T) {
	store, err := NewStore(nil)
	require.NoError(t, err)

	_, err = Middleware("thirty per minute", store)
	assert.Error(t, err)
}
