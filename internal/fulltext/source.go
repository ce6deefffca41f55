// Package fulltext locates readable public-domain editions of books and
// fetches their plain-text bodies from Project Gutenberg and Archive.org.
package fulltext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/athenareader/athena/internal/metadata"
)

// ErrContentUnavailable means no plain-text edition of the work exists in
// any known archive (e.g. the work is not public-domain-digitized).
// Definitive miss; safe to cache negatively.
var ErrContentUnavailable = errors.New("no plain-text edition available")

// EditionLookup resolves an ISBN to edition details. Satisfied by
// metadata.Client; the full-text source uses it to find the Archive.org
// scan identifier for an edition.
type EditionLookup interface {
	Details(ctx context.Context, isbn string) (*metadata.EditionDetails, error)
}

// Client fetches full book texts from Project Gutenberg (directly and via
// the Gutendex search API) and from Archive.org.
type Client struct {
	httpClient   *http.Client
	gutenbergURL string
	gutendexURL  string
	archiveURL   string
	lookup       EditionLookup
}

// Options configures a Client. Zero values fall back to production defaults.
type Options struct {
	GutenbergBaseURL string
	GutendexBaseURL  string
	ArchiveBaseURL   string
	Timeout          time.Duration
}

// NewClient creates a full-text client.
func NewClient(lookup EditionLookup, opts Options) *Client {
	if opts.GutenbergBaseURL == "" {
		opts.GutenbergBaseURL = "https://www.gutenberg.org"
	}
	if opts.GutendexBaseURL == "" {
		opts.GutendexBaseURL = "https://gutendex.com"
	}
	if opts.ArchiveBaseURL == "" {
		opts.ArchiveBaseURL = "https://archive.org"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}

	return &Client{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		gutenbergURL: opts.GutenbergBaseURL,
		gutendexURL:  opts.GutendexBaseURL,
		archiveURL:   opts.ArchiveBaseURL,
		lookup:       lookup,
	}
}

// FetchByIdentifier resolves a canonical ISBN directly to a text body:
// first through the known Gutenberg edition table, then through the
// edition's Archive.org scan when one exists.
func (c *Client) FetchByIdentifier(ctx context.Context, isbn string) (string, error) {
	if bookID, ok := gutenbergByISBN[isbn]; ok {
		text, err := c.fetchGutenbergText(ctx, bookID)
		if err == nil {
			return text, nil
		}
	}

	details, err := c.lookup.Details(ctx, isbn)
	if err != nil {
		return "", err
	}
	if details.Ocaid == "" {
		return "", ErrContentUnavailable
	}

	return c.fetchArchiveText(ctx, details.Ocaid)
}

// SearchByTitleAuthor searches the Gutenberg catalog via Gutendex and
// returns the body of the first edition offering a plain-text format.
// A second pass with the title alone covers author-name mismatches.
func (c *Client) SearchByTitleAuthor(ctx context.Context, title string, authors []string) (string, error) {
	if title == "" {
		return "", ErrContentUnavailable
	}

	query := title
	if len(authors) > 0 {
		query = title + " " + authors[0]
	}

	bookID, err := c.searchGutendex(ctx, query)
	if err != nil || bookID == 0 {
		bookID, err = c.searchGutendex(ctx, title)
	}
	if err != nil {
		return "", err
	}
	if bookID == 0 {
		return "", ErrContentUnavailable
	}

	return c.fetchGutenbergText(ctx, bookID)
}

// CatalogEntry is one Gutendex search result, used by the catalog
// search endpoint.
type CatalogEntry struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Subjects []string `json:"subjects,omitempty"`
}

// SearchCatalog performs a free-form Gutendex catalog search and returns
// up to limit entries.
func (c *Client) SearchCatalog(ctx context.Context, query string, limit int) ([]CatalogEntry, error) {
	result, err := c.gutendexSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, limit)
	for _, book := range result.Results {
		if len(entries) == limit {
			break
		}
		entry := CatalogEntry{
			ID:       book.ID,
			Title:    book.Title,
			Subjects: book.Subjects,
		}
		if len(entry.Subjects) > 3 {
			entry.Subjects = entry.Subjects[:3]
		}
		for _, a := range book.Authors {
			entry.Authors = append(entry.Authors, a.Name)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// searchGutendex returns the ID of the first search result that offers a
// plain-text format, or 0 when nothing usable matches.
func (c *Client) searchGutendex(ctx context.Context, query string) (int, error) {
	result, err := c.gutendexSearch(ctx, query)
	if err != nil {
		return 0, err
	}

	for _, book := range result.Results {
		if book.hasPlainText() {
			return book.ID, nil
		}
	}
	return 0, nil
}

func (c *Client) gutendexSearch(ctx context.Context, query string) (*gutendexResult, error) {
	searchURL := fmt.Sprintf("%s/books/?search=%s", c.gutendexURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Athena/1.0 (https://github.com/athenareader/athena)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search catalog: %v", metadata.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog search status %d", metadata.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var result gutendexResult
	if err := decodeJSON(resp, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &result, nil
}

// fetchArchiveText downloads the OCR plain text of an Archive.org scan,
// trying the known file suffixes in order.
func (c *Client) fetchArchiveText(ctx context.Context, ocaid string) (string, error) {
	urls := []string{
		fmt.Sprintf("%s/download/%s/%s_djvu.txt", c.archiveURL, ocaid, ocaid),
		fmt.Sprintf("%s/download/%s/%s_text.txt", c.archiveURL, ocaid, ocaid),
		fmt.Sprintf("%s/download/%s/%s.txt", c.archiveURL, ocaid, ocaid),
	}

	for _, u := range urls {
		body, err := c.fetchPlainText(ctx, u)
		if err != nil {
			continue
		}

		cleaned := cleanArchiveText(body)
		if len(cleaned) >= minBodyLength {
			return cleaned, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrContentUnavailable
}

// cleanArchiveText normalizes OCR output: drops page-number-only lines and
// very short OCR noise lines, and collapses the text into paragraphs.
func cleanArchiveText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 2 {
			continue
		}
		if isPageMarker(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

func isPageMarker(line string) bool {
	rest, ok := strings.CutPrefix(line, "Page ")
	if !ok {
		rest = line
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return rest != ""
}

func decodeJSON(resp *http.Response, dst any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

// Gutendex API response types (internal)

type gutendexResult struct {
	Count   int            `json:"count"`
	Results []gutendexBook `json:"results"`
}

type gutendexBook struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Subjects []string          `json:"subjects"`
	Formats  map[string]string `json:"formats"`
}

func (b gutendexBook) hasPlainText() bool {
	for mime := range b.Formats {
		if strings.HasPrefix(mime, "text/plain") {
			return true
		}
	}
	return false
}
