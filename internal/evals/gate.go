package evals

import "fmt"

// CompileRateThreshold is the minimum share of runs whose compile
// succeeded for the gate to pass.
const CompileRateThreshold = 0.95

// GateReport aggregates recorded eval results against the release gates.
type GateReport struct {
	Runs             int
	CompileChecked   int
	CompileSuccesses int
	ForbiddenClaims  int
	EditViolations   int
	Failures         []string
}

// CompileRate is the fraction of checked runs that compiled. With nothing
// checked the rate is vacuously 1.
func (r GateReport) CompileRate() float64 {
	if r.CompileChecked == 0 {
		return 1
	}
	return float64(r.CompileSuccesses) / float64(r.CompileChecked)
}

// Passed reports whether every gate held.
func (r GateReport) Passed() bool {
	return len(r.Failures) == 0
}

// RunGate checks aggregated eval_results blobs against the gates: compile
// success rate at least CompileRateThreshold, zero forbidden claims, zero
// edit-scope violations. An empty result set passes vacuously.
func RunGate(results []map[string]any) GateReport {
	r := GateReport{Runs: len(results)}
	for _, res := range results {
		if v, ok := res["compile_success"].(bool); ok {
			r.CompileChecked++
			if v {
				r.CompileSuccesses++
			}
		}
		r.ForbiddenClaims += intField(res, "forbidden_claims_count")
		r.EditViolations += intField(res, "edit_scope_violations")
	}

	if r.CompileChecked > 0 && r.CompileRate() < CompileRateThreshold {
		r.Failures = append(r.Failures,
			fmt.Sprintf("compile success rate %.1f%% below %.0f%%", r.CompileRate()*100, CompileRateThreshold*100))
	}
	if r.ForbiddenClaims > 0 {
		r.Failures = append(r.Failures, fmt.Sprintf("%d forbidden claim(s), threshold is 0", r.ForbiddenClaims))
	}
	if r.EditViolations > 0 {
		r.Failures = append(r.Failures, fmt.Sprintf("%d edit scope violation(s), threshold is 0", r.EditViolations))
	}
	return r
}

// intField reads a numeric field from a decoded JSON blob. JSON numbers
// decode as float64.
func intField(m map[string]any, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}
