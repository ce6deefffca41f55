package textsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "Call me Ishmael.\nSome years ago, never mind how long,\nhaving little or no money in my purse,\nI thought I would sail about a little.\nISHMAEL was my name."

func TestSearchFindsMatchingLines(t *testing.T) {
	s := New(body, "ishmael")

	first, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "Call me Ishmael.", first.Text)

	second, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 5, second.Line)
	assert.Equal(t, "ISHMAEL was my name.", second.Text)

	_, ok = s.Next()
	assert.False(t, ok)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	matches := FindAll(body, "SAIL", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, 4, matches[0].Line)
}

func TestSearchNoMatches(t *testing.T) {
	s := New(body, "whale")
	_, ok := s.Next()
	assert.False(t, ok)
}

func TestEmptyTermMatchesNothing(t *testing.T) {
	s := New(body, "")
	_, ok := s.Next()
	assert.False(t, ok)

	assert.Empty(t, FindAll(body, "", 0))
}

func TestReset(t *testing.T) {
	s := New(body, "little")

	first, ok := s.Next()
	require.True(t, ok)

	s.Reset()
	again, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, first, again)
}

func TestFindAllRespectsLimit(t *testing.T) {
	matches := FindAll(body, "i", 2)
	assert.Len(t, matches, 2)
}

func TestSearchEmptyBody(t *testing.T) {
	_, ok := New("", "term").Next()
	assert.False(t, ok)
}
