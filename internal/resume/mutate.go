package resume

import "strings"

// Mutation is one find/replace edit proposed by the tailoring model.
type Mutation struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// MutationOptions configures mutation policy.
type MutationOptions struct {
	// MaxCount caps how many mutations a single cycle may carry. Zero means
	// unbounded.
	MaxCount int
}

// ApplyMutations applies mutations to a document, restricted to editable
// regions.
//
// Guarantees:
//   - Content outside every editable region is never touched.
//   - Within a region, each mutation replaces the first occurrence of its
//     original text only; mutations whose original is not present in the
//     region are skipped. Upstream paraphrasing makes misses routine, so a
//     miss is not an error.
//   - Supplying more mutations than opts.MaxCount fails with
//     *TooManyMutationsError before anything is applied.
//
// Regions are processed in reverse source order so that earlier regions'
// recorded line numbers stay valid while later regions change length.
func ApplyMutations(texContent string, mutations []Mutation, opts MutationOptions) (string, error) {
	if opts.MaxCount > 0 && len(mutations) > opts.MaxCount {
		return "", &TooManyMutationsError{Count: len(mutations), Max: opts.MaxCount}
	}

	regions := ParseEditableRegions(texContent)
	if len(regions) == 0 {
		return texContent, nil
	}

	lines := strings.Split(texContent, "\n")

	for i := len(regions) - 1; i >= 0; i-- {
		region := regions[i]
		startIdx := region.StartLine - 1
		endIdx := region.EndLine
		if startIdx >= endIdx {
			// Empty region, nothing to edit.
			continue
		}

		regionText := strings.Join(lines[startIdx:endIdx], "\n")
		mutated := regionText
		for _, m := range mutations {
			if strings.Contains(mutated, m.Original) {
				mutated = strings.Replace(mutated, m.Original, m.Replacement, 1)
			}
		}
		if mutated == regionText {
			continue
		}

		replacement := strings.Split(mutated, "\n")
		rebuilt := make([]string, 0, len(lines)-(endIdx-startIdx)+len(replacement))
		rebuilt = append(rebuilt, lines[:startIdx]...)
		rebuilt = append(rebuilt, replacement...)
		rebuilt = append(rebuilt, lines[endIdx:]...)
		lines = rebuilt
	}

	return strings.Join(lines, "\n"), nil
}
