// Package cache provides the shared resolution cache that sits between the
// HTTP layer and the upstream bibliographic sources. Lookups are
// deduplicated so concurrent requests for the same book produce a single
// upstream call.
package cache

import (
	"container/list"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/athenareader/athena/internal/fulltext"
	"github.com/athenareader/athena/internal/metadata"
)

// MetadataResolver resolves a canonical ISBN to book metadata.
type MetadataResolver interface {
	Resolve(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
}

// ContentResolver resolves a canonical ISBN to the book's full text.
type ContentResolver interface {
	Resolve(ctx context.Context, isbn string) (*fulltext.BookContent, error)
}

// Options configures a ResolutionCache. Zero values fall back to defaults
// suitable for production.
type Options struct {
	MetadataTTL     time.Duration
	NegativeTTL     time.Duration
	ContentCapacity int
}

// ResolutionCache caches metadata and full-text resolutions keyed by
// canonical ISBN. Metadata entries expire after MetadataTTL; definitive
// misses (book unknown, no text available) are cached for the shorter
// NegativeTTL so upstreams are not hammered for books that do not exist.
// Transient upstream failures are never cached. Full texts are large and
// immutable, so they live in a bounded LRU without expiry: only capacity
// pressure evicts a fetched body.
type ResolutionCache struct {
	metaResolver    MetadataResolver
	contentResolver ContentResolver

	metadataTTL time.Duration
	negativeTTL time.Duration
	capacity    int

	metaGroup    singleflight.Group
	contentGroup singleflight.Group

	mu      sync.Mutex
	meta    map[string]*metaEntry
	content map[string]*list.Element
	order   *list.List
}

type metaEntry struct {
	value     *metadata.BookMetadata
	err       error
	expiresAt time.Time
}

// contentEntry holds one LRU slot. A zero expiresAt means the entry never
// expires: fetched text is immutable, so only capacity pressure evicts it.
type contentEntry struct {
	isbn      string
	value     *fulltext.BookContent
	err       error
	expiresAt time.Time
}

func (e *contentEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// New creates a ResolutionCache in front of the given resolvers.
func New(meta MetadataResolver, content ContentResolver, opts Options) *ResolutionCache {
	if opts.MetadataTTL == 0 {
		opts.MetadataTTL = 24 * time.Hour
	}
	if opts.NegativeTTL == 0 {
		opts.NegativeTTL = 5 * time.Minute
	}
	if opts.ContentCapacity == 0 {
		opts.ContentCapacity = 32
	}

	return &ResolutionCache{
		metaResolver:    meta,
		contentResolver: content,
		metadataTTL:     opts.MetadataTTL,
		negativeTTL:     opts.NegativeTTL,
		capacity:        opts.ContentCapacity,
		meta:            make(map[string]*metaEntry),
		content:         make(map[string]*list.Element),
		order:           list.New(),
	}
}

// GetMetadata returns cached metadata for a canonical ISBN, resolving and
// caching it on a miss. Concurrent misses for the same ISBN share one
// upstream call.
func (c *ResolutionCache) GetMetadata(ctx context.Context, isbn string) (*metadata.BookMetadata, error) {
	c.mu.Lock()
	if entry, ok := c.meta[isbn]; ok && time.Now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.value, entry.err
	}
	c.mu.Unlock()

	result, err, _ := c.metaGroup.Do(isbn, func() (any, error) {
		// Detach from the caller so a client disconnect mid-flight does
		// not waste the upstream work for everyone coalesced behind it.
		value, err := c.metaResolver.Resolve(context.WithoutCancel(ctx), isbn)
		c.storeMetadata(isbn, value, err)
		return value, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*metadata.BookMetadata), nil
}

func (c *ResolutionCache) storeMetadata(isbn string, value *metadata.BookMetadata, err error) {
	ttl := c.metadataTTL
	switch {
	case err == nil:
	case errors.Is(err, metadata.ErrBookNotFound):
		ttl = c.negativeTTL
	default:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.meta[isbn] = &metaEntry{value: value, err: err, expiresAt: time.Now().Add(ttl)}
}

// GetContent returns the cached full text for a canonical ISBN, resolving
// and caching it on a miss. A hit refreshes the entry's LRU position.
func (c *ResolutionCache) GetContent(ctx context.Context, isbn string) (*fulltext.BookContent, error) {
	c.mu.Lock()
	if elem, ok := c.content[isbn]; ok {
		entry := elem.Value.(*contentEntry)
		if !entry.expired(time.Now()) {
			c.order.MoveToFront(elem)
			c.mu.Unlock()
			return entry.value, entry.err
		}
	}
	c.mu.Unlock()

	result, err, _ := c.contentGroup.Do(isbn, func() (any, error) {
		value, err := c.contentResolver.Resolve(context.WithoutCancel(ctx), isbn)
		c.storeContent(isbn, value, err)
		return value, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*fulltext.BookContent), nil
}

func (c *ResolutionCache) storeContent(isbn string, value *fulltext.BookContent, err error) {
	// Fetched text never expires; definitive misses get the negative TTL.
	var expiresAt time.Time
	switch {
	case err == nil:
	case errors.Is(err, fulltext.ErrContentUnavailable), errors.Is(err, metadata.ErrBookNotFound):
		expiresAt = time.Now().Add(c.negativeTTL)
	default:
		return
	}

	entry := &contentEntry{isbn: isbn, value: value, err: err, expiresAt: expiresAt}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.content[isbn]; ok {
		elem.Value = entry
		c.order.MoveToFront(elem)
		return
	}

	c.content[isbn] = c.order.PushFront(entry)
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.content, oldest.Value.(*contentEntry).isbn)
	}
}

// Invalidate drops both cached resolutions for an ISBN.
func (c *ResolutionCache) Invalidate(isbn string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.meta, isbn)
	if elem, ok := c.content[isbn]; ok {
		c.order.Remove(elem)
		delete(c.content, isbn)
	}
}

// Sweep removes expired entries. Run periodically; hits already skip
// expired entries, so this only reclaims memory.
func (c *ResolutionCache) Sweep() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for isbn, entry := range c.meta {
		if now.After(entry.expiresAt) {
			delete(c.meta, isbn)
			removed++
		}
	}

	var next *list.Element
	for elem := c.order.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*contentEntry)
		if entry.expired(now) {
			c.order.Remove(elem)
			delete(c.content, entry.isbn)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("Cache sweep removed %d expired entries", removed)
	}
}

// Stats reports current entry counts, for the health endpoint.
func (c *ResolutionCache) Stats() (metadataEntries, contentEntries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.meta), c.order.Len()
}
