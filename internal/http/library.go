package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/auth"
	"github.com/athenareader/athena/internal/library"
)

type LibraryController struct {
	aggregator *library.Aggregator
}

func NewLibraryController(aggregator *library.Aggregator) *LibraryController {
	return &LibraryController{aggregator: aggregator}
}

// GetLibrary returns every book the caller has reading state for, joined
// with metadata, most recently read first.
func (controller *LibraryController) GetLibrary(c *gin.Context) {
	user := auth.CurrentUser(c)

	entries, err := controller.aggregator.Library(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "library")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": entries, "count": len(entries)})
}
