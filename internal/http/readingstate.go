package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/auth"
	"github.com/athenareader/athena/internal/database"
	"github.com/athenareader/athena/internal/isbn"
)

// ReadingStateController serves the per-user progress, bookmark, and
// highlight endpoints.
type ReadingStateController struct {
	db *database.Database
}

func NewReadingStateController(db *database.Database) *ReadingStateController {
	return &ReadingStateController{db: db}
}

type progressRequest struct {
	ISBN     string   `json:"isbn"`
	Position *float64 `json:"position"`
}

// SetProgress records the caller's reading position in a book.
func (controller *ReadingStateController) SetProgress(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Position == nil {
		respondBadRequest(c, "isbn and position are required")
		return
	}

	canonical, err := isbn.Normalize(req.ISBN)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	progress, err := controller.db.SetProgress(user.ID, canonical, *req.Position)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetProgress returns the caller's position in a book, or JSON null when
// no position was ever recorded. null is distinct from a stored position
// of zero.
func (controller *ReadingStateController) GetProgress(c *gin.Context) {
	user := auth.CurrentUser(c)

	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	progress, err := controller.db.GetProgress(user.ID, canonical)
	if err != nil {
		respondResolutionError(c, err)
		return
	}
	if progress == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, progress)
}

type bookmarkRequest struct {
	ISBN     string   `json:"isbn"`
	Position *float64 `json:"position"`
	Text     string   `json:"text"`
}

// AddBookmark stores a bookmark for the caller.
func (controller *ReadingStateController) AddBookmark(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Position == nil {
		respondBadRequest(c, "isbn and position are required")
		return
	}

	canonical, err := isbn.Normalize(req.ISBN)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	bookmark, err := controller.db.AddBookmark(user.ID, canonical, *req.Position, req.Text)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookmark)
}

// ListBookmarks returns the caller's bookmarks in a book.
func (controller *ReadingStateController) ListBookmarks(c *gin.Context) {
	user := auth.CurrentUser(c)

	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	bookmarks, err := controller.db.ListBookmarks(user.ID, canonical)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks, "count": len(bookmarks)})
}

// RemoveBookmark deletes the caller's bookmark at a position. Deleting a
// missing bookmark succeeds.
func (controller *ReadingStateController) RemoveBookmark(c *gin.Context) {
	user := auth.CurrentUser(c)

	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	position, err := parsePosition(c.Param("position"))
	if err != nil {
		respondBadRequest(c, "invalid position")
		return
	}

	if err := controller.db.RemoveBookmark(user.ID, canonical, position); err != nil {
		respondResolutionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type highlightRequest struct {
	ISBN          string   `json:"isbn"`
	StartPosition *float64 `json:"start_position"`
	EndPosition   *float64 `json:"end_position"`
	Color         string   `json:"color"`
	Text          string   `json:"text"`
}

// AddHighlight stores a highlighted passage for the caller.
func (controller *ReadingStateController) AddHighlight(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StartPosition == nil || req.EndPosition == nil {
		respondBadRequest(c, "isbn, start_position, and end_position are required")
		return
	}

	canonical, err := isbn.Normalize(req.ISBN)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	highlight, err := controller.db.AddHighlight(user.ID, canonical, *req.StartPosition, *req.EndPosition, req.Color, req.Text)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, highlight)
}

// ListHighlights returns the caller's highlights in a book.
func (controller *ReadingStateController) ListHighlights(c *gin.Context) {
	user := auth.CurrentUser(c)

	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	highlights, err := controller.db.ListHighlights(user.ID, canonical)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"highlights": highlights, "count": len(highlights)})
}

// RemoveHighlight deletes one of the caller's highlights. Idempotent.
func (controller *ReadingStateController) RemoveHighlight(c *gin.Context) {
	user := auth.CurrentUser(c)

	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.db.RemoveHighlight(user.ID, canonical, id); err != nil {
		respondResolutionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
