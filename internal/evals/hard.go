package evals

import (
	"os"
	"strings"

	"github.com/karan/inbox-agent/internal/jd"
)

// Results is the evaluation blob attached to every run record.
type Results struct {
	CompileSuccess       bool `json:"compile_success"`
	RollbackUsed         bool `json:"rollback_used"`
	ForbiddenClaimsCount int  `json:"forbidden_claims_count"`
	EditScopeViolations  int  `json:"edit_scope_violations"`
	DraftLengthOK        bool `json:"draft_length_ok"`
	CostOK               bool `json:"cost_ok"`
	JDSchemaValid        bool `json:"jd_schema_valid"`
}

// CheckCompile reports whether compilation produced a PDF on disk.
func CheckCompile(pdfPath string) bool {
	if pdfPath == "" {
		return false
	}
	_, err := os.Stat(pdfPath)
	return err == nil
}

// CheckJDSchema reports whether a JD satisfies its schema contract.
func CheckJDSchema(schema jd.Schema) bool {
	s := schema
	return s.Validate() == nil
}

// CheckDraftLength reports whether a draft is non-empty and within the
// character limit.
func CheckDraftLength(draft string, maxChars int) bool {
	if strings.TrimSpace(draft) == "" {
		return false
	}
	return len(draft) <= maxChars
}

// CheckCost reports whether the run cost is at or below the threshold.
func CheckCost(cost, threshold float64) bool {
	return cost <= threshold
}

// ExtractBullets pulls \item bullet texts out of a LaTeX document for the
// forbidden-claims check.
func ExtractBullets(tex string) []string {
	var bullets []string
	for _, line := range strings.Split(tex, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, `\item `) {
			bullets = append(bullets, strings.TrimSpace(strings.TrimPrefix(stripped, `\item `)))
		}
	}
	return bullets
}
