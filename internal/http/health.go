package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/cache"
	"github.com/athenareader/athena/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Cache   map[string]int    `json:"cache,omitempty"`
}

type HealthController struct {
	db      *database.Database
	cache   *cache.ResolutionCache
	version string
}

func NewHealthController(db *database.Database, resolution *cache.ResolutionCache, version string) *HealthController {
	return &HealthController{
		db:      db,
		cache:   resolution,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	if h.cache != nil {
		metadataEntries, contentEntries := h.cache.Stats()
		health.Cache = map[string]int{
			"metadata_entries": metadataEntries,
			"content_entries":  contentEntries,
		}
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
