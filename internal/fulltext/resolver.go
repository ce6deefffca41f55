package fulltext

import (
	"context"
	"errors"
	"log"

	"github.com/athenareader/athena/internal/metadata"
)

// BookContent is the resolved full text of a book.
type BookContent struct {
	ISBN   string `json:"isbn"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// MetadataLookup supplies the title and authors used by the search
// fallback strategy.
type MetadataLookup interface {
	Resolve(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
}

// Resolver tries a chain of strategies to obtain a book's full text.
// Strategies run in order; the first success wins. ErrContentUnavailable
// from one strategy lets the chain continue, any other error aborts it.
type Resolver struct {
	client *Client
	meta   MetadataLookup
}

// NewResolver builds the standard two-strategy chain: exact identifier
// lookup first, then a catalog search by title and author.
func NewResolver(client *Client, meta MetadataLookup) *Resolver {
	return &Resolver{client: client, meta: meta}
}

// Resolve fetches the full text for a canonical ISBN.
func (r *Resolver) Resolve(ctx context.Context, isbn string) (*BookContent, error) {
	text, err := r.client.FetchByIdentifier(ctx, isbn)
	if err == nil {
		return &BookContent{ISBN: isbn, Source: "identifier", Text: text}, nil
	}
	if !errors.Is(err, ErrContentUnavailable) && !errors.Is(err, metadata.ErrBookNotFound) {
		return nil, err
	}

	meta, err := r.meta.Resolve(ctx, isbn)
	if err != nil {
		if errors.Is(err, metadata.ErrBookNotFound) {
			return nil, ErrContentUnavailable
		}
		return nil, err
	}

	log.Printf("Full text for %s not found by identifier, searching catalog for %q", isbn, meta.Title)

	text, err = r.client.SearchByTitleAuthor(ctx, meta.Title, meta.Authors)
	if err != nil {
		return nil, err
	}
	return &BookContent{ISBN: isbn, Source: "search", Text: text}, nil
}
