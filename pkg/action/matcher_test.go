package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWildcardMatchesWholeText(t *testing.T) {
	m := &Matcher{Pattern: WildcardPattern}
	require.NoError(t, m.Compile())

	payload := m.Match("remember the milk", nil)
	assert.Equal(t, []string{"remember the milk"}, payload)

	assert.Empty(t, m.Match("", nil))
}

func TestRegexMatchesAreCaseInsensitive(t *testing.T) {
	m := &Matcher{Pattern: `todo:\s*\S+`}
	require.NoError(t, m.Compile())

	payload := m.Match("TODO: buy milk and todo: call mom", nil)
	require.Len(t, payload, 2)
	assert.Equal(t, "TODO: buy", payload[0])
}

func TestLinkHarvestRespectsAllowedHosts(t *testing.T) {
	m := &Matcher{
		ParseLinks:   true,
		AllowedHosts: []string{"youtube.com"},
	}
	require.NoError(t, m.Compile())

	links := []string{
		"https://www.youtube.com/watch?v=abc",
		"https://example.org/page",
	}
	payload := m.Match("", links)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abc"}, payload)
}

func TestLinkHarvestWithoutHostFilterTakesAll(t *testing.T) {
	m := &Matcher{ParseLinks: true}
	links := []string{"https://a.example", "https://b.example"}

	assert.Equal(t, links, m.Match("", links))
}

func TestNoLinksNoPatternMeansNoMatch(t *testing.T) {
	m := &Matcher{ParseLinks: true}
	assert.Empty(t, m.Match("plain text", nil))
}

func TestCompileRejectsBadPattern(t *testing.T) {
	m := &Matcher{Pattern: "("}
	assert.Error(t, m.Compile())
}
