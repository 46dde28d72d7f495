package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karan/inbox-agent/internal/config"
	"github.com/karan/inbox-agent/internal/evals"
	"github.com/karan/inbox-agent/internal/store"
)

var gateCommand = &cobra.Command{
	Use:   "gate",
	Short: "Check recorded eval results against release thresholds",
	Long: `Aggregates eval results across all recorded runs and exits non-zero when
compile success falls below 95% or any forbidden claim or edit-scope
violation was recorded.`,
	RunE: runGate,
}

func init() {
	rootCmd.AddCommand(gateCommand)
}

// runGate needs only the database, so it opens the store directly instead
// of building the full app (no API key required to check the gate).
func runGate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	settings := config.Load("")
	st, err := store.Open(settings.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	results, err := st.EvalResults(ctx)
	if err != nil {
		return err
	}

	report := evals.RunGate(results)
	if report.Runs == 0 {
		fmt.Println("No eval results recorded; gate passes vacuously.")
		return nil
	}

	fmt.Printf("Runs checked: %d\n", report.Runs)
	if report.CompileChecked > 0 {
		fmt.Printf("Compile success rate: %.1f%%\n", report.CompileRate()*100)
	}
	fmt.Printf("Forbidden claims: %d\n", report.ForbiddenClaims)
	fmt.Printf("Edit scope violations: %d\n", report.EditViolations)

	if !report.Passed() {
		for _, f := range report.Failures {
			fmt.Println("FAIL: " + f)
		}
		return fmt.Errorf("eval gate failed")
	}
	fmt.Println("All gates passed.")
	return nil
}
