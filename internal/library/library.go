// Package library assembles a user's library view: every book they have
// reading state for, joined with resolved metadata.
package library

import (
	"context"
	"log"
	"time"

	"github.com/athenareader/athena/internal/entities"
	"github.com/athenareader/athena/internal/metadata"
)

// ProgressLister supplies the user's progress records. Satisfied by
// database.Database.
type ProgressLister interface {
	ListProgress(userID uint) ([]entities.Progress, error)
}

// MetadataGetter resolves book metadata, normally through the resolution
// cache.
type MetadataGetter interface {
	GetMetadata(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
}

// Entry is one book in the user's library.
type Entry struct {
	ISBN       string    `json:"isbn"`
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	CoverURL   string    `json:"cover_url,omitempty"`
	Position   float64   `json:"position"`
	LastReadAt time.Time `json:"last_read_at"`
}

// Aggregator builds library views.
type Aggregator struct {
	progress ProgressLister
	metadata MetadataGetter
}

func NewAggregator(progress ProgressLister, metadata MetadataGetter) *Aggregator {
	return &Aggregator{progress: progress, metadata: metadata}
}

// Library returns the user's books, most recently read first. Books whose
// metadata cannot currently be resolved are omitted rather than failing
// the whole view.
func (a *Aggregator) Library(ctx context.Context, userID uint) ([]Entry, error) {
	records, err := a.progress.ListProgress(userID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		meta, err := a.metadata.GetMetadata(ctx, record.ISBN)
		if err != nil {
			log.Printf("Library for user %d: skipping %s: %v", userID, record.ISBN, err)
			continue
		}

		entries = append(entries, Entry{
			ISBN:       record.ISBN,
			Title:      meta.Title,
			Authors:    meta.Authors,
			CoverURL:   meta.CoverURL,
			Position:   record.Position,
			LastReadAt: record.LastReadAt,
		})
	}

	return entries, nil
}
