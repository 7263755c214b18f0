package matcher

import (
	"sort"
	"strings"

	"github.com/boothbase/boothbase-backend/internal/badge/domain"
)

// Scoring weights. Contact-name evidence dominates: company names recur
// across many candidates, a person's full name does not.
const (
	strongContactScore = 50
	weakContactScore   = 30
	companyScore       = 10
	multiContactBonus  = 40

	// strongSimilarity is the positional-similarity cutoff separating an
	// exact-ish token hit from an incidental substring hit.
	strongSimilarity = 0.7

	// confidenceCeiling maps raw scores onto the 0-1 policy scale. A
	// single strong contact hit plus the multi-word bonus clears it.
	confidenceCeiling = 100
)

// Score re-ranks fetched candidates against the badge word list. It is a
// pure function: fixed words and a fixed candidate slice always produce
// the same output. Ties keep the fetcher's original order.
//
// Per word, case-insensitively: a substring hit on the contact name
// scores 50 when the word strongly resembles one of the contact's own
// tokens, 30 otherwise; a substring hit on the company name scores 10.
// Candidates with two or more contact-name word hits earn a flat 40-point
// bonus, rewarding first-and-last-name agreement over two candidates each
// catching one word.
func Score(words []string, candidates []domain.DealerCandidate) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		sc := domain.ScoredCandidate{DealerCandidate: cand}
		contact := strings.ToLower(cand.ContactName)
		company := strings.ToLower(cand.CompanyName)
		contactTokens := strings.Fields(contact)

		for _, w := range words {
			w = strings.ToLower(w)
			if w == "" {
				continue
			}
			if strings.Contains(contact, w) {
				sc.ContactWordMatches++
				if strongTokenMatch(w, contactTokens) {
					sc.MatchScore += strongContactScore
				} else {
					sc.MatchScore += weakContactScore
				}
			}
			if strings.Contains(company, w) {
				sc.CompanyWordMatches++
				sc.MatchScore += companyScore
			}
		}
		if sc.ContactWordMatches >= 2 {
			sc.MatchScore += multiContactBonus
		}
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	return scored
}

// Confidence maps a raw match score onto the 0-1 scale the resolution
// policy thresholds against, capped at 1.
func Confidence(score int) float64 {
	c := float64(score) / confidenceCeiling
	if c > 1 {
		return 1
	}
	return c
}

// strongTokenMatch reports whether the word closely matches any single
// token of the contact name by positional similarity.
func strongTokenMatch(word string, tokens []string) bool {
	for _, tok := range tokens {
		if positionalSimilarity(word, tok) >= strongSimilarity {
			return true
		}
	}
	return false
}

// positionalSimilarity counts character-position agreements between two
// strings and divides by the longer length. A cheap alignment proxy, not
// edit distance: "skolnick" vs "skolnick" is 1.0, "skol" vs "skolnick"
// is 0.5.
func positionalSimilarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	same := 0
	for i := 0; i < len(shorter); i++ {
		if shorter[i] == longer[i] {
			same++
		}
	}
	return float64(same) / float64(len(longer))
}
