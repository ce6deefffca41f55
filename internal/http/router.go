// Package http wires the gin router and controllers for the API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/demo"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(demo.NewMiddleware(cfg.DemoMode).Handler())

	health := NewHealthController(cfg.Database, cfg.Cache, cfg.Version)
	authController := NewAuthController(cfg.AuthService)
	booksController := NewBooksController(cfg.Cache, cfg.Catalog, cfg.Covers, cfg.TaskClient)
	readingState := NewReadingStateController(cfg.Database)
	libraryController := NewLibraryController(cfg.Library)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints
	router.POST("/api/auth/register", authController.Register)
	router.POST("/api/auth/login", authController.Login)

	// Public resolution endpoints
	router.GET("/api/books/:isbn", booksController.GetBook)
	router.GET("/api/books/:isbn/cover", booksController.GetCover)
	router.GET("/api/gutenberg/search", booksController.SearchCatalog)

	api := router.Group("/api", cfg.AuthService.RequireAuth())

	api.GET("/auth/me", authController.Me)

	// Content endpoints
	api.GET("/books/:isbn/content", booksController.GetContent)
	api.GET("/books/:isbn/content/search", booksController.SearchContent)

	// Reading state endpoints
	api.POST("/progress", readingState.SetProgress)
	api.GET("/progress/:isbn", readingState.GetProgress)
	api.POST("/bookmarks", readingState.AddBookmark)
	api.GET("/bookmarks/:isbn", readingState.ListBookmarks)
	api.DELETE("/bookmarks/:isbn/:position", readingState.RemoveBookmark)
	api.POST("/highlights", readingState.AddHighlight)
	api.GET("/highlights/:isbn", readingState.ListHighlights)
	api.DELETE("/highlights/:isbn/:id", readingState.RemoveHighlight)

	// Library endpoint
	api.GET("/library", libraryController.GetLibrary)

	return router
}
