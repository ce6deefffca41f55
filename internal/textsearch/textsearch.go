// Package textsearch implements simple line-oriented substring search over
// book texts.
package textsearch

import "strings"

// Match is a single matching line.
type Match struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Search iterates over the lines of a body that contain a term,
// case-insensitively. The zero-value term matches nothing.
type Search struct {
	lines []string
	term  string
	next  int
}

// New prepares a search over body for term.
func New(body, term string) *Search {
	s := &Search{term: strings.ToLower(term)}
	if s.term != "" {
		s.lines = strings.Split(body, "\n")
	}
	return s
}

// Next returns the next matching line, with 1-based line numbers. The
// second return is false once the search is exhausted.
func (s *Search) Next() (Match, bool) {
	for s.next < len(s.lines) {
		line := s.lines[s.next]
		s.next++
		if strings.Contains(strings.ToLower(line), s.term) {
			return Match{Line: s.next, Text: strings.TrimSpace(line)}, true
		}
	}
	return Match{}, false
}

// Reset rewinds the search to the beginning of the body.
func (s *Search) Reset() {
	s.next = 0
}

// FindAll collects up to limit matches. A non-positive limit means no cap.
func FindAll(body, term string, limit int) []Match {
	search := New(body, term)
	matches := []Match{}
	for {
		if limit > 0 && len(matches) == limit {
			break
		}
		match, ok := search.Next()
		if !ok {
			break
		}
		matches = append(matches, match)
	}
	return matches
}
