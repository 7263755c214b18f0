// Package matcher turns raw badge text into a resolved dealer match:
// sanitizing OCR output, guessing name/company fields, building search
// terms, and re-scoring fuzzy candidates.
package matcher

import (
	"strings"
	"unicode/utf8"
)

const (
	minLineLength = 2
	maxLineLength = 100
	minGoodRatio  = 0.6
)

// SanitizeLines splits raw OCR output into trimmed lines and drops the
// ones that look like recognition noise. A line survives when it is
// 2 to 100 characters long and at least 60% of it is plain letters,
// digits, or spaces. The filter favors precision: losing a genuine
// one-character initial beats keeping a barcode misread as symbol soup.
// Surviving lines keep their original order.
func SanitizeLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if keepLine(line) {
			out = append(out, line)
		}
	}
	return out
}

func keepLine(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < minLineLength || n > maxLineLength {
		return false
	}
	good := 0
	for _, r := range line {
		if isGoodChar(r) {
			good++
		}
	}
	return float64(good)/float64(n) >= minGoodRatio
}

func isGoodChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ':
		return true
	}
	return false
}
