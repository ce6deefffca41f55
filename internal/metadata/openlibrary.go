// Package metadata resolves canonical ISBNs to bibliographic records via the
// OpenLibrary API.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrBookNotFound means the upstream has no record for the ISBN.
	// Definitive miss; safe to cache negatively.
	ErrBookNotFound = errors.New("book not found")

	// ErrUpstreamUnavailable means the provider could not be reached or
	// answered with a server error after the internal retry. Transient;
	// never cached.
	ErrUpstreamUnavailable = errors.New("bibliographic source unavailable")
)

// BookMetadata is the normalized bibliographic record for one edition.
type BookMetadata struct {
	ISBN        string   `json:"isbn"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher,omitempty"`
	PublishDate string   `json:"publish_date,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
}

// EditionDetails carries the extra edition fields the full-text resolver
// needs: the Archive.org identifier when the edition has been digitized.
type EditionDetails struct {
	Ocaid   string
	Title   string
	Authors []string
}

// Client fetches book metadata from the OpenLibrary API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
	backoff     time.Duration
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// Options configures a Client. Zero values fall back to production defaults.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	RetryBackoff time.Duration
	RateInterval time.Duration
}

// NewClient creates an OpenLibrary API client with rate limiting.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openlibrary.org"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}

	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     opts.BaseURL,
		rateLimiter: newRateLimiter(opts.RateInterval),
		backoff:     opts.RetryBackoff,
	}
}

// Resolve looks up a canonical ISBN and returns its metadata.
// Partial upstream records are tolerated; absent fields stay empty.
func (c *Client) Resolve(ctx context.Context, isbn string) (*BookMetadata, error) {
	record, err := c.fetchRecord(ctx, isbn, "data")
	if err != nil {
		return nil, err
	}

	var data openLibraryData
	if err := json.Unmarshal(record, &data); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	return convertToMetadata(&data, isbn), nil
}

// Details fetches the edition details for an ISBN, including the
// Archive.org identifier when the edition has a scanned copy.
func (c *Client) Details(ctx context.Context, isbn string) (*EditionDetails, error) {
	record, err := c.fetchRecord(ctx, isbn, "details")
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Details openLibraryDetails `json:"details"`
	}
	if err := json.Unmarshal(record, &wrapper); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}

	details := &EditionDetails{
		Ocaid: wrapper.Details.Ocaid,
		Title: wrapper.Details.Title,
	}
	for _, a := range wrapper.Details.Authors {
		if a.Name != "" {
			details.Authors = append(details.Authors, a.Name)
		}
	}
	return details, nil
}

// fetchRecord performs the books API call and extracts the per-ISBN record.
// An empty response body or a missing key is a definitive not-found.
func (c *Client) fetchRecord(ctx context.Context, isbn, jscmd string) (json.RawMessage, error) {
	c.rateLimiter.wait()

	url := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&format=json&jscmd=%s", c.baseURL, isbn, jscmd)

	resp, err := c.doWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrBookNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	record, ok := payload["ISBN:"+isbn]
	if !ok {
		return nil, ErrBookNotFound
	}
	return record, nil
}

// doWithRetry performs a GET, retrying once after a backoff on transport
// errors and server errors. Retries happen at this boundary only.
func (c *Client) doWithRetry(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.do(ctx, url)
	if err == nil && resp.StatusCode < http.StatusInternalServerError {
		return resp, nil
	}
	if resp != nil {
		resp.Body.Close()
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
	}

	select {
	case <-time.After(c.backoff):
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
	}

	resp, err = c.do(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Athena/1.0 (https://github.com/athenareader/athena)")
	return c.httpClient.Do(req)
}

func convertToMetadata(data *openLibraryData, isbn string) *BookMetadata {
	md := &BookMetadata{
		ISBN:        isbn,
		Title:       data.Title,
		PublishDate: data.PublishDate,
	}
	if md.Title == "" {
		md.Title = "Unknown"
	}

	for _, a := range data.Authors {
		if a.Name != "" {
			md.Authors = append(md.Authors, a.Name)
		}
	}

	if len(data.Publishers) > 0 {
		md.Publisher = data.Publishers[0].Name
	}

	for _, s := range data.Subjects {
		if s.Name != "" {
			md.Subjects = append(md.Subjects, s.Name)
		}
	}
	if len(md.Subjects) > 10 {
		md.Subjects = md.Subjects[:10]
	}

	// Prefer the record's own cover, largest first; otherwise synthesize
	// the covers service URL from the ISBN.
	switch {
	case data.Cover.Large != "":
		md.CoverURL = data.Cover.Large
	case data.Cover.Medium != "":
		md.CoverURL = data.Cover.Medium
	case data.Cover.Small != "":
		md.CoverURL = data.Cover.Small
	default:
		md.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn)
	}

	return md
}

// OpenLibrary API response types (internal)

type openLibraryData struct {
	Title       string     `json:"title"`
	Authors     []namedRef `json:"authors"`
	Publishers  []namedRef `json:"publishers"`
	PublishDate string     `json:"publish_date"`
	Subjects    []namedRef `json:"subjects"`
	Cover       struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
}

type namedRef struct {
	Name string `json:"name"`
}

type openLibraryDetails struct {
	Title   string `json:"title"`
	Ocaid   string `json:"ocaid"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}
