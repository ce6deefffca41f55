package http

import (
	"context"

	"github.com/athenareader/athena/internal/auth"
	"github.com/athenareader/athena/internal/cache"
	"github.com/athenareader/athena/internal/covers"
	"github.com/athenareader/athena/internal/database"
	"github.com/athenareader/athena/internal/fulltext"
	"github.com/athenareader/athena/internal/library"
	"github.com/athenareader/athena/internal/tasks"
)

// CatalogSearcher searches the public-domain catalog. Satisfied by
// fulltext.Client.
type CatalogSearcher interface {
	SearchCatalog(ctx context.Context, query string, limit int) ([]fulltext.CatalogEntry, error)
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Database    *database.Database
	AuthService *auth.Service
	Cache       *cache.ResolutionCache
	Library     *library.Aggregator
	Catalog     CatalogSearcher

	// Local cover image cache (optional)
	Covers *covers.Cache

	// Task queue client (optional)
	TaskClient *tasks.Client

	// DemoMode blocks write endpoints except login
	DemoMode bool

	// Application info
	Version string
}
