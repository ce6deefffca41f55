package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/database"
	"github.com/athenareader/athena/internal/fulltext"
	"github.com/athenareader/athena/internal/isbn"
	"github.com/athenareader/athena/internal/metadata"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondResolutionError maps resolution and validation failures to their
// status codes: bad identifiers are the client's fault, unknown books are
// 404, and upstream outages are 502 so callers can tell them apart from
// our own failures.
func respondResolutionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, isbn.ErrInvalidISBN):
		respondBadRequest(c, err.Error())
	case errors.Is(err, metadata.ErrBookNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "book not found"})
	case errors.Is(err, fulltext.ErrContentUnavailable):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no readable edition available"})
	case errors.Is(err, metadata.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "bibliographic source unavailable"})
	case errors.Is(err, database.ErrDuplicateBookmark):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrInvalidRange):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, c.FullPath())
	}
}

// canonicalISBN normalizes the :isbn route parameter. Responds with a 400
// and returns false when the identifier is not a valid ISBN.
func canonicalISBN(c *gin.Context) (string, bool) {
	canonical, err := isbn.Normalize(c.Param("isbn"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return "", false
	}
	return canonical, true
}

// parsePosition parses a reading position from a URL parameter.
func parsePosition(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
