package evals

import (
	"regexp"
	"strings"
)

// properNounRe matches consecutive capitalized-word sequences, the simple
// named-entity heuristic.
var properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\b`)

// numericClaimRe matches quantitative claims: percentages ("40%", escaped
// "40\%" in LaTeX) and multipliers ("5x", "3.5x").
var numericClaimRe = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:\\?%|x\b)`)

// genericTitles are professional-title phrases that read as proper nouns but
// carry no factual claim; they are never counted.
var genericTitles = map[string]bool{
	"product manager":      true,
	"senior product":       true,
	"software engineer":    true,
	"data scientist":       true,
	"machine learning":     true,
	"engineering manager":  true,
	"technical lead":       true,
	"project manager":      true,
	"business analyst":     true,
	"product":              true,
	"engineering":          true,
	"led":                  true,
	"built":                true,
	"designed":             true,
	"improved":             true,
	"launched":             true,
	"delivered":            true,
	"owned":                true,
	"drove":                true,
	"managed":              true,
}

// CheckForbiddenClaims counts potentially fabricated claims in mutated
// bullets: proper-noun spans and quantitative claims that appear in the
// mutated text but in neither the original bullets nor the approved bullet
// bank. This is a substring-membership heuristic, not entailment; it trades
// precision for having zero tolerance on new named entities.
//
// Returns the count of suspicious claims (0 = clean).
func CheckForbiddenClaims(originalBullets, mutatedBullets, bulletBank []string) int {
	allowed := strings.ToLower(strings.Join(append(append([]string{}, originalBullets...), bulletBank...), " "))

	count := 0
	for _, bullet := range mutatedBullets {
		for _, noun := range properNounRe.FindAllString(bullet, -1) {
			lower := strings.ToLower(noun)
			if genericTitles[lower] {
				continue
			}
			if !strings.Contains(allowed, lower) {
				count++
			}
		}
		for _, claim := range numericClaimRe.FindAllString(bullet, -1) {
			normalized := normalizeClaim(claim)
			if !strings.Contains(normalizeClaim(allowed), normalized) {
				count++
			}
		}
	}
	return count
}

// UngroundedSpans returns the proper-noun spans in text that appear nowhere
// in the allowed corpus. Same heuristic as CheckForbiddenClaims, but it
// reports the offending spans instead of a count so callers can show them.
func UngroundedSpans(text string, allowed []string) []string {
	corpus := strings.ToLower(strings.Join(allowed, " "))

	var spans []string
	seen := map[string]bool{}
	for _, noun := range properNounRe.FindAllString(text, -1) {
		lower := strings.ToLower(noun)
		if genericTitles[lower] || seen[lower] {
			continue
		}
		if !strings.Contains(corpus, lower) {
			spans = append(spans, noun)
			seen[lower] = true
		}
	}
	return spans
}

// normalizeClaim strips LaTeX escapes and whitespace so "40\%" and "40 %"
// compare equal to "40%".
func normalizeClaim(s string) string {
	s = strings.ReplaceAll(s, `\%`, "%")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToLower(s)
}
