package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTermsPrefersNameShapedLines(t *testing.T) {
	lines := []string{"RYAN", "SKOLNICK", "GLEN DIMPLEX AMERICAS", "B00TH 4221##"}
	words, query := SearchTerms(lines)
	assert.Equal(t, "RYAN SKOLNICK GLEN DIMPLEX AMERICAS", query)
	assert.Equal(t, []string{"RYAN", "SKOLNICK", "GLEN", "DIMPLEX", "AMERICAS"}, words)
}

func TestSearchTermsFallsBackToFirstThreeLines(t *testing.T) {
	// No line passes the letters test, so the first three go in verbatim.
	lines := []string{"B4-221 H7", "20-23 AUG 24", "ID 99812-X", "44 100 200"}
	words, query := SearchTerms(lines)
	assert.Equal(t, "B4-221 H7 20-23 AUG 24 ID 99812-X", query)
	assert.Equal(t, []string{"B4-221", "H7", "20-23", "AUG", "24", "ID", "99812-X"}, words)
}

func TestSearchTermsFewerThanThreeFallbackLines(t *testing.T) {
	words, query := SearchTerms([]string{"B4-221 H7"})
	assert.Equal(t, "B4-221 H7", query)
	assert.Equal(t, []string{"B4-221", "H7"}, words)
}

func TestSearchTermsEmptyInput(t *testing.T) {
	words, query := SearchTerms(nil)
	assert.Empty(t, query)
	assert.Nil(t, words)
}
