package matcher

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/boothbase/boothbase-backend/internal/badge/domain"
)

const (
	nameLikeRatio  = 0.75
	nameLikeMinLen = 3
	nameLikeMaxLen = 60

	// company line bounds for the single-name-like case
	companyMinLen = 5
	companyMaxLen = 60
)

// looksLikeName reports whether a line is mostly letters and spaces and
// sized like a printed name. Used both for field classification and for
// search-term selection.
func looksLikeName(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < nameLikeMinLen || n > nameLikeMaxLen {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) || r == ' ' {
			letters++
		}
	}
	return float64(letters)/float64(n) > nameLikeRatio
}

// isNameLike is the full classifier test: looksLikeName plus at least
// two whitespace-separated tokens, so single words like "MARKETING" or
// "CAMBRIDGE" don't pass for a person's name.
func isNameLike(line string) bool {
	return looksLikeName(line) && len(strings.Fields(line)) >= 2
}

// Classify guesses which sanitized lines hold the person and company
// names, for pre-filling the manual-entry form when search came up empty.
// It is a heuristic with known failure modes (long personal names, short
// company names); the form it feeds stays fully editable.
func Classify(lines []string) domain.Prefill {
	var nameLike []string
	for _, line := range lines {
		if isNameLike(line) {
			nameLike = append(nameLike, line)
		}
	}

	switch {
	case len(nameLike) >= 2:
		// Company names run longer than person names; take the longest
		// as the organization and the shortest as the person.
		byLen := make([]string, len(nameLike))
		copy(byLen, nameLike)
		sort.SliceStable(byLen, func(i, j int) bool {
			return utf8.RuneCountInString(byLen[i]) > utf8.RuneCountInString(byLen[j])
		})
		return domain.Prefill{
			ContactName: byLen[len(byLen)-1],
			CompanyName: byLen[0],
		}

	case len(nameLike) == 1:
		pre := domain.Prefill{ContactName: nameLike[0]}
		for _, line := range lines {
			if line == nameLike[0] {
				continue
			}
			n := utf8.RuneCountInString(line)
			if n > companyMinLen && n <= companyMaxLen {
				pre.CompanyName = line
				break
			}
		}
		return pre

	default:
		var pre domain.Prefill
		if len(lines) > 0 {
			pre.ContactName = lines[0]
		}
		if len(lines) > 1 {
			pre.CompanyName = lines[1]
		}
		return pre
	}
}
