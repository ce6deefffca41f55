package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/cache"
	"github.com/athenareader/athena/internal/covers"
	"github.com/athenareader/athena/internal/tasks"
	"github.com/athenareader/athena/internal/textsearch"
)

// maxSearchMatches caps the matches returned by a content search.
const maxSearchMatches = 100

type BooksController struct {
	cache      *cache.ResolutionCache
	catalog    CatalogSearcher
	covers     *covers.Cache
	taskClient *tasks.Client
}

func NewBooksController(resolution *cache.ResolutionCache, catalog CatalogSearcher, coverCache *covers.Cache, taskClient *tasks.Client) *BooksController {
	return &BooksController{
		cache:      resolution,
		catalog:    catalog,
		covers:     coverCache,
		taskClient: taskClient,
	}
}

// GetBook resolves a book's metadata by ISBN. A successful lookup also
// queues a background prefetch of the full text.
func (controller *BooksController) GetBook(c *gin.Context) {
	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	meta, err := controller.cache.GetMetadata(c.Request.Context(), canonical)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	if controller.taskClient != nil {
		if _, err := controller.taskClient.Add(tasks.PrefetchContentTask{ISBN: canonical}).Save(); err != nil {
			// Prefetch is best-effort; the lookup itself succeeded.
			log.Printf("Failed to enqueue content prefetch for %s: %v", canonical, err)
		}
	}

	c.JSON(http.StatusOK, meta)
}

// GetCover serves the book's cover image, downloading and caching it
// locally on first request.
func (controller *BooksController) GetCover(c *gin.Context) {
	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	meta, err := controller.cache.GetMetadata(c.Request.Context(), canonical)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	if controller.covers == nil || meta.CoverURL == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no cover available"})
		return
	}

	path, err := controller.covers.GetCover(c.Request.Context(), canonical, meta.CoverURL)
	if err != nil {
		respondInternalError(c, err, "fetch cover")
		return
	}

	c.File(path)
}

// GetContent resolves and returns the book's full text.
func (controller *BooksController) GetContent(c *gin.Context) {
	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	content, err := controller.cache.GetContent(c.Request.Context(), canonical)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// SearchContent finds lines in the book's text matching the q parameter.
func (controller *BooksController) SearchContent(c *gin.Context) {
	canonical, ok := canonicalISBN(c)
	if !ok {
		return
	}

	// An empty term matches nothing; the response is an empty match list.
	query := c.Query("q")

	content, err := controller.cache.GetContent(c.Request.Context(), canonical)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	matches := textsearch.FindAll(content.Text, query, maxSearchMatches)
	c.JSON(http.StatusOK, gin.H{
		"isbn":    canonical,
		"query":   query,
		"matches": matches,
		"count":   len(matches),
	})
}

// SearchCatalog searches the public-domain catalog by free-form query.
func (controller *BooksController) SearchCatalog(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respondBadRequest(c, "query parameter is required")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			respondBadRequest(c, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	entries, err := controller.catalog.SearchCatalog(c.Request.Context(), query, limit)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": entries, "count": len(entries)})
}
