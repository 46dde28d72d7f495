package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Selection identifies the winning base template and its fit score.
type Selection struct {
	Path  string
	Score float64
}

// FitPercent renders the fit score as a rounded integer percentage for
// persistence.
func (s Selection) FitPercent() int {
	return int(s.Score*100 + 0.5)
}

// KeywordOverlap computes the fraction of target skills found in the
// template text, case-insensitive. An empty skill set scores 0, not 1:
// with no targets there is nothing to match, and ties then break on
// selection order.
func KeywordOverlap(skills []string, texContent string) float64 {
	if len(skills) == 0 {
		return 0.0
	}
	texLower := strings.ToLower(texContent)
	matches := 0
	for _, skill := range skills {
		if strings.Contains(texLower, strings.ToLower(skill)) {
			matches++
		}
	}
	return float64(matches) / float64(len(skills))
}

// SelectBaseResume picks the master_*.tex template with the highest keyword
// overlap against the JD skills. Ties break on lexicographic filename order.
// Returns *NoTemplatesFoundError if the directory has no eligible templates.
func SelectBaseResume(skills []string, resumesDir string) (Selection, error) {
	pattern := filepath.Join(resumesDir, "master_*.tex")
	candidates, err := filepath.Glob(pattern)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to scan resumes dir: %w", err)
	}
	sort.Strings(candidates)

	best := Selection{Score: -1}
	for _, path := range candidates {
		content, err := os.ReadFile(path)
		if err != nil {
			return Selection{}, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		score := KeywordOverlap(skills, string(content))
		if score > best.Score {
			best = Selection{Path: path, Score: score}
		}
	}

	if best.Path == "" {
		return Selection{}, &NoTemplatesFoundError{Dir: resumesDir}
	}
	return best, nil
}
