package fulltext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// gutenbergByISBN maps common public-domain edition ISBNs to Project
// Gutenberg book IDs. Gutenberg does not index by ISBN, so well-known
// editions are resolved through this table before falling back to search.
var gutenbergByISBN = map[string]int{
	// Pride and Prejudice - Jane Austen
	"9780141439518": 1342, "9780553213102": 1342,
	// 1984 - George Orwell
	"9780451524935": 3748, "9780141036144": 3748,
	// The Great Gatsby - F. Scott Fitzgerald
	"9780743273565": 64317, "9780142437230": 64317,
	// Moby Dick - Herman Melville
	"9780142437247": 2701, "9780553213119": 2701,
	// Frankenstein - Mary Shelley
	"9780141439471": 84, "9780486282114": 84,
	// Dracula - Bram Stoker
	"9780141439846": 345,
	// Alice's Adventures in Wonderland - Lewis Carroll
	"9780141439761": 11,
	// The Adventures of Sherlock Holmes - Arthur Conan Doyle
	"9780141036755": 1661,
	// War and Peace - Leo Tolstoy
	"9780140447934": 2600,
	// Anna Karenina - Leo Tolstoy
	"9780140449174": 1399,
	// Crime and Punishment - Fyodor Dostoevsky
	"9780140449136": 2554,
	// The Brothers Karamazov - Fyodor Dostoevsky
	"9780140449242": 28054,
	// Jane Eyre - Charlotte Bronte
	"9780141441146": 1260,
	// Wuthering Heights - Emily Bronte
	"9780141439556": 768,
	// Great Expectations - Charles Dickens
	"9780141439563": 1400,
	// Oliver Twist - Charles Dickens
	"9780141439747": 730,
	// A Tale of Two Cities - Charles Dickens
	"9780141439600": 98,
	// Adventures of Huckleberry Finn - Mark Twain
	"9780142437179": 76,
	// The Adventures of Tom Sawyer - Mark Twain
	"9780141439648": 74,
	// The Count of Monte Cristo - Alexandre Dumas
	"9780140449266": 1184,
	// The Three Musketeers - Alexandre Dumas
	"9780141442334": 1257,
	// The Picture of Dorian Gray - Oscar Wilde
	"9780141439570": 174,
	// The Importance of Being Earnest - Oscar Wilde
	"9780141439594": 844,
	// The Metamorphosis - Franz Kafka
	"9780141182902": 5200,
	// Heart of Darkness - Joseph Conrad
	"9780141441672": 526,
	// The War of the Worlds - H.G. Wells
	"9780141441030": 36,
	// The Time Machine - H.G. Wells
	"9780141439976": 35,
}

// minBodyLength rejects truncated or error-page responses masquerading
// as book text.
const minBodyLength = 1000

var (
	startMarker     = regexp.MustCompile(`(?i)START OF (THIS|THE) PROJECT GUTENBERG`)
	endMarker       = regexp.MustCompile(`(?i)END OF (THIS|THE) PROJECT GUTENBERG`)
	bracketedText   = regexp.MustCompile(`(?s)\[[^\]]*\]`)
	excessBlankRuns = regexp.MustCompile(`\n{4,}`)
)

// fetchGutenbergText downloads a book body from Project Gutenberg, trying
// the known mirror URL patterns in order, and strips the license boilerplate.
func (c *Client) fetchGutenbergText(ctx context.Context, bookID int) (string, error) {
	urls := []string{
		fmt.Sprintf("%s/cache/epub/%d/pg%d.txt", c.gutenbergURL, bookID, bookID),
		fmt.Sprintf("%s/files/%d/%d-0.txt", c.gutenbergURL, bookID, bookID),
		fmt.Sprintf("%s/files/%d/%d.txt", c.gutenbergURL, bookID, bookID),
	}

	var lastErr error
	for _, url := range urls {
		body, err := c.fetchPlainText(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		cleaned := cleanGutenbergText(body)
		if len(cleaned) >= minBodyLength {
			return cleaned, nil
		}
	}

	if ctx.Err() != nil {
		return "", lastErr
	}
	return "", ErrContentUnavailable
}

// fetchPlainText GETs a URL and returns the body when it looks like plain
// text rather than an HTML error page.
func (c *Client) fetchPlainText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Athena/1.0 (https://github.com/athenareader/athena)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	text := string(body)
	if looksLikeHTML(text) {
		return "", fmt.Errorf("HTML response for %s", url)
	}
	return text, nil
}

func looksLikeHTML(text string) bool {
	head := text
	if len(head) > 256 {
		head = head[:256]
	}
	head = strings.ToLower(head)
	return strings.Contains(head, "<!doctype") || strings.Contains(head, "<html")
}

// cleanGutenbergText extracts the body between the START/END license
// markers and removes bracketed transcriber annotations. When no markers
// are present the first 20 lines are dropped instead, since the license
// preamble always occupies the top of the file.
func cleanGutenbergText(text string) string {
	lines := strings.Split(text, "\n")

	var content []string
	inContent := false
	for _, line := range lines {
		if startMarker.MatchString(line) {
			inContent = true
			content = content[:0]
			continue
		}
		if endMarker.MatchString(line) {
			break
		}
		if inContent {
			content = append(content, line)
		}
	}

	if !inContent && len(lines) > 20 {
		content = lines[20:]
	}

	body := strings.Join(content, "\n")
	body = bracketedText.ReplaceAllString(body, "")
	body = excessBlankRuns.ReplaceAllString(body, "\n\n\n")
	return strings.TrimSpace(body)
}
