package action

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// WildcardPattern matches the whole message text instead of a regex fragment.
const WildcardPattern = "*"

// Matcher decides whether a custom action applies to a message and extracts
// its payload from the text and link entities.
type Matcher struct {
	// Pattern is empty (links only), the wildcard, or a case-insensitive regex.
	Pattern      string
	ParseLinks   bool
	AllowedHosts []string

	regex *regexp.Regexp
}

// Compile validates the pattern ahead of time so a broken plugin manifest
// fails at boot.
func (m *Matcher) Compile() error {
	if m.Pattern == "" || m.Pattern == WildcardPattern {
		return nil
	}
	regex, err := regexp.Compile("(?i)" + m.Pattern)
	if err != nil {
		return fmt.Errorf("compile matcher pattern %q: %w", m.Pattern, err)
	}
	m.regex = regex
	return nil
}

// Match returns the extracted payload, or nil when the action does not apply.
func (m *Matcher) Match(text string, links []string) []string {
	payload := m.matchLinks(links)

	switch {
	case m.Pattern == "":
		return payload
	case m.Pattern == WildcardPattern:
		if text != "" {
			payload = append(payload, text)
		}
		return payload
	}

	regex := m.regex
	if regex == nil {
		compiled, err := regexp.Compile("(?i)" + m.Pattern)
		if err != nil {
			return payload
		}
		regex = compiled
	}
	for _, found := range regex.FindAllString(text, -1) {
		if found != "" {
			payload = append(payload, found)
		}
	}
	return payload
}

func (m *Matcher) matchLinks(links []string) []string {
	if !m.ParseLinks || len(links) == 0 {
		return nil
	}
	if m.AllowedHosts == nil {
		return append([]string(nil), links...)
	}

	matched := make([]string, 0, len(links))
	for _, link := range links {
		if m.hostAllowed(link) {
			matched = append(matched, link)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return matched
}

func (m *Matcher) hostAllowed(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	for _, allowed := range m.AllowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
