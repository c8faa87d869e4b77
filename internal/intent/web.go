package intent

import (
	"strings"

	"github.com/runger/beacon/internal/result"
)

// Shortcut maps query prefixes to a search-engine URL. The encoded search
// term is appended to URL.
type Shortcut struct {
	Prefixes []string // tried in order, each must end with a space
	Name     string   // display name, e.g. "Google"
	URL      string   // base URL the encoded term is appended to
}

// builtinShortcuts is the fixed shortcut table, checked in order.
var builtinShortcuts = []Shortcut{
	{Prefixes: []string{"g ", "google "}, Name: "Google", URL: "https://www.google.com/search?q="},
	{Prefixes: []string{"yt ", "youtube "}, Name: "YouTube", URL: "https://www.youtube.com/results?search_query="},
	{Prefixes: []string{"gh ", "github "}, Name: "GitHub", URL: "https://github.com/search?q="},
	{Prefixes: []string{"wiki ", "wikipedia "}, Name: "Wikipedia", URL: "https://en.wikipedia.org/wiki/Special:Search?search="},
}

// WebSearcher recognizes web-search shortcuts and direct URLs. Extra
// shortcuts (from configuration) are appended after the built-in table.
type WebSearcher struct {
	shortcuts []Shortcut
}

// NewWebSearcher builds a WebSearcher with the built-in table plus any
// extra shortcuts.
func NewWebSearcher(extra ...Shortcut) *WebSearcher {
	shortcuts := make([]Shortcut, 0, len(builtinShortcuts)+len(extra))
	shortcuts = append(shortcuts, builtinShortcuts...)
	shortcuts = append(shortcuts, extra...)
	return &WebSearcher{shortcuts: shortcuts}
}

var defaultWebSearcher = NewWebSearcher()

// CheckWebSearch runs the built-in shortcut table against the query.
func CheckWebSearch(query string) *result.Result {
	return defaultWebSearcher.Check(query)
}

// Check matches shortcut prefixes case-insensitively, requiring a
// non-empty remainder after the space. When no shortcut matches, a literal
// http:// or https:// prefix on the raw query yields a direct-URL row.
func (w *WebSearcher) Check(query string) *result.Result {
	lowered := strings.ToLower(query)

	for _, sc := range w.shortcuts {
		for _, prefix := range sc.Prefixes {
			term, ok := strings.CutPrefix(lowered, prefix)
			if !ok || term == "" {
				continue
			}
			return &result.Result{
				Name:        "Search " + sc.Name + ": " + term,
				Description: "Open " + sc.Name + " search in browser",
				Target:      sc.URL + PercentEncode(term),
				Kind:        result.KindWeb,
			}
		}
	}

	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		return &result.Result{
			Name:        "Open URL",
			Description: query,
			Target:      query,
			Kind:        result.KindWeb,
		}
	}

	return nil
}

// PercentEncode encodes a search term for use in a URL query component.
// ASCII alphanumerics and - _ . ~ pass through; a handful of separators
// get their well-known escapes; every other byte becomes uppercase %XX.
func PercentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		case c == ' ':
			b.WriteString("%20")
		case c == '&':
			b.WriteString("%26")
		case c == '?':
			b.WriteString("%3F")
		case c == '=':
			b.WriteString("%3D")
		case c == '#':
			b.WriteString("%23")
		case c == '+':
			b.WriteString("%2B")
		default:
			b.WriteString(percentHex(c))
		}
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

func percentHex(c byte) string {
	return string([]byte{'%', upperHex[c>>4], upperHex[c&0x0f]})
}
