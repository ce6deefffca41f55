package demo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testRouter(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewMiddleware(enabled).Handler())

	handler := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	router.GET("/api/library", handler)
	router.POST("/api/progress", handler)
	router.DELETE("/api/bookmarks/123/10.5", handler)
	router.POST("/api/auth/login", handler)
	router.POST("/api/auth/register", handler)

	return router
}

func request(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestDisabledPassesEverything(t *testing.T) {
	router := testRouter(false)

	assert.Equal(t, http.StatusOK, request(router, "GET", "/api/library").Code)
	assert.Equal(t, http.StatusOK, request(router, "POST", "/api/progress").Code)
	assert.Equal(t, http.StatusOK, request(router, "DELETE", "/api/bookmarks/123/10.5").Code)
}

func TestEnabledAllowsReads(t *testing.T) {
	router := testRouter(true)

	assert.Equal(t, http.StatusOK, request(router, "GET", "/api/library").Code)
}

func TestEnabledBlocksWrites(t *testing.T) {
	router := testRouter(true)

	w := request(router, "POST", "/api/progress")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "demo_mode")

	assert.Equal(t, http.StatusForbidden, request(router, "DELETE", "/api/bookmarks/123/10.5").Code)
}

func TestEnabledAllowsLogin(t *testing.T) {
	router := testRouter(true)

	assert.Equal(t, http.StatusOK, request(router, "POST", "/api/auth/login").Code)
	assert.Equal(t, http.StatusForbidden, request(router, "POST", "/api/auth/register").Code)
}

func TestIsEnabled(t *testing.T) {
	assert.True(t, NewMiddleware(true).IsEnabled())
	assert.False(t, NewMiddleware(false).IsEnabled())
}
