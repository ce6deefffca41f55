// Package demo provides a read-only mode for publicly hosted instances.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware blocks write operations in demo mode.
// Read-only operations (GET) are always allowed.
// Certain paths are allowlisted even for non-GET methods (e.g., login).
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		// Always allow GET requests (read-only)
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		// Allow HEAD and OPTIONS for CORS/preflight
		if c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		// Check if path is in the allowlist for non-GET methods
		if m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":     "this action is disabled in demo mode",
			"demo_mode": true,
		})
		c.Abort()
	}
}

// isAllowedPath checks if a path is allowed for write operations in demo mode.
// This is intentionally restrictive - only explicitly allowed paths pass through.
func (m *Middleware) isAllowedPath(path string) bool {
	allowedPaths := []string{
		// Login must keep working so visitors can get a token
		"/api/auth/login",
	}

	for _, allowed := range allowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}
