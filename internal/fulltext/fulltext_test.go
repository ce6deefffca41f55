package fulltext

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenareader/athena/internal/metadata"
)

func bookBody() string {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("It is a truth universally acknowledged, that a single man in possession of a good fortune must be in want of a wife.\n")
	}
	return sb.String()
}

func gutenbergFile() string {
	return "The Project Gutenberg eBook of Pride and Prejudice\n" +
		"License preamble here.\n" +
		"*** START OF THE PROJECT GUTENBERG EBOOK PRIDE AND PREJUDICE ***\n" +
		bookBody() +
		"*** END OF THE PROJECT GUTENBERG EBOOK PRIDE AND PREJUDICE ***\n" +
		"License trailer here.\n"
}

type fakeLookup struct {
	details *metadata.EditionDetails
	err     error
}

func (f *fakeLookup) Details(_ context.Context, _ string) (*metadata.EditionDetails, error) {
	return f.details, f.err
}

type fakeMetadata struct {
	meta *metadata.BookMetadata
	err  error
}

func (f *fakeMetadata) Resolve(_ context.Context, _ string) (*metadata.BookMetadata, error) {
	return f.meta, f.err
}

func testClient(t *testing.T, handler http.Handler, lookup EditionLookup) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(lookup, Options{
		GutenbergBaseURL: server.URL,
		GutendexBaseURL:  server.URL,
		ArchiveBaseURL:   server.URL,
	})
}

func TestFetchByIdentifierKnownEdition(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cache/epub/1342/pg1342.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gutenbergFile())
	})

	client := testClient(t, mux, &fakeLookup{err: metadata.ErrBookNotFound})

	text, err := client.FetchByIdentifier(context.Background(), "9780141439518")
	require.NoError(t, err)
	assert.Contains(t, text, "truth universally acknowledged")
	assert.NotContains(t, text, "PROJECT GUTENBERG")
	assert.NotContains(t, text, "License preamble")
}

func TestFetchByIdentifierTriesMirrorPatterns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/1342/1342-0.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gutenbergFile())
	})

	client := testClient(t, mux, &fakeLookup{err: metadata.ErrBookNotFound})

	text, err := client.FetchByIdentifier(context.Background(), "9780141439518")
	require.NoError(t, err)
	assert.Contains(t, text, "truth universally acknowledged")
}

func TestFetchByIdentifierRejectsHTMLErrorPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<!DOCTYPE html><html><body>Not here</body></html>")
	})

	client := testClient(t, mux, &fakeLookup{details: &metadata.EditionDetails{}})

	_, err := client.FetchByIdentifier(context.Background(), "9780141439518")
	assert.ErrorIs(t, err, ErrContentUnavailable)
}

func TestFetchByIdentifierArchiveScan(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/download/wartimesketches00park/wartimesketches00park_djvu.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "12\nPage 14\n"+bookBody())
	})

	lookup := &fakeLookup{details: &metadata.EditionDetails{Ocaid: "wartimesketches00park"}}
	client := testClient(t, mux, lookup)

	text, err := client.FetchByIdentifier(context.Background(), "9990000000001")
	require.NoError(t, err)
	assert.Contains(t, text, "truth universally acknowledged")
	assert.NotContains(t, text, "Page 14")
}

func TestFetchByIdentifierNoScanAvailable(t *testing.T) {
	client := testClient(t, http.NewServeMux(), &fakeLookup{details: &metadata.EditionDetails{}})

	_, err := client.FetchByIdentifier(context.Background(), "9990000000001")
	assert.ErrorIs(t, err, ErrContentUnavailable)
}

func TestSearchByTitleAuthor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "Moby") {
			fmt.Fprint(w, `{"count": 0, "results": []}`)
			return
		}
		fmt.Fprint(w, `{"count": 1, "results": [
			{"id": 2701, "title": "Moby Dick", "authors": [{"name": "Melville, Herman"}],
			 "formats": {"text/plain; charset=us-ascii": "x", "application/epub+zip": "y"}}
		]}`)
	})
	mux.HandleFunc("/cache/epub/2701/pg2701.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gutenbergFile())
	})

	client := testClient(t, mux, &fakeLookup{})

	text, err := client.SearchByTitleAuthor(context.Background(), "Moby Dick", []string{"Herman Melville"})
	require.NoError(t, err)
	assert.Contains(t, text, "truth universally acknowledged")
}

func TestSearchByTitleAuthorRetriesTitleOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("search")
		if strings.Contains(query, "Wrong Author") {
			fmt.Fprint(w, `{"count": 0, "results": []}`)
			return
		}
		fmt.Fprint(w, `{"count": 1, "results": [
			{"id": 2701, "title": "Moby Dick", "authors": [],
			 "formats": {"text/plain": "x"}}
		]}`)
	})
	mux.HandleFunc("/cache/epub/2701/pg2701.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gutenbergFile())
	})

	client := testClient(t, mux, &fakeLookup{})

	_, err := client.SearchByTitleAuthor(context.Background(), "Moby Dick", []string{"Wrong Author"})
	assert.NoError(t, err)
}

func TestSearchByTitleAuthorSkipsEditionsWithoutPlainText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 1, "results": [
			{"id": 99, "title": "Moby Dick", "authors": [],
			 "formats": {"application/epub+zip": "y"}}
		]}`)
	})

	client := testClient(t, mux, &fakeLookup{})

	_, err := client.SearchByTitleAuthor(context.Background(), "Moby Dick", nil)
	assert.ErrorIs(t, err, ErrContentUnavailable)
}

func TestSearchCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 2, "results": [
			{"id": 2701, "title": "Moby Dick", "authors": [{"name": "Melville, Herman"}],
			 "subjects": ["Whales", "Sea stories", "Ships", "Ahab"], "formats": {}},
			{"id": 15, "title": "Moby Dick (abridged)", "authors": [], "formats": {}}
		]}`)
	})

	client := testClient(t, mux, &fakeLookup{})

	entries, err := client.SearchCatalog(context.Background(), "moby dick", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2701, entries[0].ID)
	assert.Equal(t, []string{"Melville, Herman"}, entries[0].Authors)
	assert.Len(t, entries[0].Subjects, 3)
}

func TestSearchCatalogUpstreamFailure(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		client := testClient(t, mux, &fakeLookup{})

		_, err := client.SearchCatalog(context.Background(), "moby dick", 10)
		assert.ErrorIs(t, err, metadata.ErrUpstreamUnavailable)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NewServeMux())
		server.Close()
		client := NewClient(&fakeLookup{}, Options{
			GutenbergBaseURL: server.URL,
			GutendexBaseURL:  server.URL,
			ArchiveBaseURL:   server.URL,
		})

		_, err := client.SearchCatalog(context.Background(), "moby dick", 10)
		assert.ErrorIs(t, err, metadata.ErrUpstreamUnavailable)
	})

	t.Run("title search", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		client := testClient(t, mux, &fakeLookup{})

		_, err := client.SearchByTitleAuthor(context.Background(), "Moby Dick", nil)
		assert.ErrorIs(t, err, metadata.ErrUpstreamUnavailable)
	})
}

func TestResolverFallsBackToSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 1, "results": [
			{"id": 2701, "title": "Moby Dick", "authors": [], "formats": {"text/plain": "x"}}
		]}`)
	})
	mux.HandleFunc("/cache/epub/2701/pg2701.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gutenbergFile())
	})

	client := testClient(t, mux, &fakeLookup{details: &metadata.EditionDetails{}})
	meta := &fakeMetadata{meta: &metadata.BookMetadata{Title: "Moby Dick", Authors: []string{"Herman Melville"}}}

	content, err := NewResolver(client, meta).Resolve(context.Background(), "9990000000001")
	require.NoError(t, err)
	assert.Equal(t, "search", content.Source)
	assert.Contains(t, content.Text, "truth universally acknowledged")
}

func TestResolverPrefersIdentifier(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cache/epub/1342/pg1342.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gutenbergFile())
	})

	client := testClient(t, mux, &fakeLookup{})
	meta := &fakeMetadata{err: metadata.ErrUpstreamUnavailable}

	content, err := NewResolver(client, meta).Resolve(context.Background(), "9780141439518")
	require.NoError(t, err)
	assert.Equal(t, "identifier", content.Source)
}

func TestResolverUnknownBook(t *testing.T) {
	client := testClient(t, http.NewServeMux(), &fakeLookup{err: metadata.ErrBookNotFound})
	meta := &fakeMetadata{err: metadata.ErrBookNotFound}

	_, err := NewResolver(client, meta).Resolve(context.Background(), "9990000000001")
	assert.ErrorIs(t, err, ErrContentUnavailable)
}

func TestCleanGutenbergText(t *testing.T) {
	t.Run("extracts between markers", func(t *testing.T) {
		got := cleanGutenbergText("preamble\n*** START OF THE PROJECT GUTENBERG EBOOK X ***\nbody text\n*** END OF THE PROJECT GUTENBERG EBOOK X ***\ntrailer")
		assert.Equal(t, "body text", got)
	})

	t.Run("strips bracketed annotations", func(t *testing.T) {
		got := cleanGutenbergText("*** START OF THIS PROJECT GUTENBERG EBOOK ***\nbefore [Illustration: a whale] after\n*** END OF THIS PROJECT GUTENBERG EBOOK ***")
		assert.Equal(t, "before  after", got)
	})

	t.Run("collapses blank runs", func(t *testing.T) {
		got := cleanGutenbergText("*** START OF THE PROJECT GUTENBERG EBOOK ***\none\n\n\n\n\n\ntwo\n*** END OF THE PROJECT GUTENBERG EBOOK ***")
		assert.Equal(t, "one\n\n\ntwo", got)
	})

	t.Run("drops header lines without markers", func(t *testing.T) {
		var lines []string
		for i := 0; i < 25; i++ {
			lines = append(lines, fmt.Sprintf("line %d", i))
		}
		got := cleanGutenbergText(strings.Join(lines, "\n"))
		assert.NotContains(t, got, "line 19")
		assert.Contains(t, got, "line 20")
	})
}
