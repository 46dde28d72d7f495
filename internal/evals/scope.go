// Package evals implements the post-hoc run evaluations: the non-negotiable
// content-safety checks, quality gates on drafts and cost, and the per-run
// telemetry logger. Checks here are advisory - they are recorded, never
// used to alter pipeline control flow.
package evals

import (
	"regexp"
	"strings"
)

// regionRe matches an editable region including its markers. (?s) lets the
// interior span lines; the non-greedy body stops at the first end marker.
var regionRe = regexp.MustCompile(`(?s)(%%BEGIN_EDITABLE)(.*?)(%%END_EDITABLE)`)

const regionMask = "${1}\n__EDITABLE_REGION__\n${3}"

// CheckEditScope verifies that no edits were made outside editable regions:
// mask every region's interior in both documents and compare the masked
// texts byte for byte. Returns true when the documents agree everywhere
// outside the regions.
func CheckEditScope(originalTex, mutatedTex string) bool {
	return maskRegions(originalTex) == maskRegions(mutatedTex)
}

// maskRegions replaces each region interior with a fixed token. A begin
// marker with no end marker after it opens a region to end of document,
// the same forgiving rule the region parser applies.
func maskRegions(tex string) string {
	masked := regionRe.ReplaceAllString(tex, regionMask)
	begin := strings.LastIndex(masked, "%%BEGIN_EDITABLE")
	end := strings.LastIndex(masked, "%%END_EDITABLE")
	if begin > end {
		masked = masked[:begin] + "%%BEGIN_EDITABLE\n__EDITABLE_REGION__"
	}
	return masked
}
