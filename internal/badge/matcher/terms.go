package matcher

import (
	"strings"
	"unicode/utf8"
)

// maxFallbackLines caps how many raw lines feed the query when no line
// passes the name-shape test.
const maxFallbackLines = 3

// SearchTerms builds the fuzzy-search query from sanitized badge lines.
// Lines of 3+ characters that look like names are preferred; when none
// qualify, the first few sanitized lines go in verbatim. The returned
// word list is the exact tokenization the scorer must use; the query is
// those lines joined with single spaces.
//
// An empty query means there is nothing worth searching for and the
// caller must skip the fetch entirely.
func SearchTerms(lines []string) (words []string, query string) {
	var picked []string
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 2 && looksLikeName(line) {
			picked = append(picked, line)
		}
	}
	if len(picked) == 0 {
		n := len(lines)
		if n > maxFallbackLines {
			n = maxFallbackLines
		}
		picked = lines[:n]
	}

	query = strings.TrimSpace(strings.Join(picked, " "))
	if query == "" {
		return nil, ""
	}
	return strings.Fields(query), query
}
