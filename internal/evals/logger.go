package evals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/karan/inbox-agent/internal/store"
)

// RunStore is the slice of the persistence layer the logger needs.
type RunStore interface {
	InsertRun(ctx context.Context, runID, agent string) error
	CompleteRun(ctx context.Context, runID string, c store.RunCompletion) error
}

// Logger writes per-run telemetry to the store and mirrors each finished
// run to a JSON file under RunsDir.
type Logger struct {
	Store   RunStore
	RunsDir string
}

// NewRunID generates a unique run identifier: "run-" plus 12 hex characters
// of a UUID with the hyphens stripped.
func NewRunID() string {
	return "run-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// StartRun inserts the 'started' row for a run. The row exists before any
// pipeline stage executes so in-flight runs are observable even if the
// process dies mid-pipeline.
func (l *Logger) StartRun(ctx context.Context, agent string) (string, error) {
	runID := NewRunID()
	if err := l.Store.InsertRun(ctx, runID, agent); err != nil {
		return "", err
	}
	return runID, nil
}

// FinishRun finalizes the run row and writes the JSON mirror. Called
// exactly once per run, success or failure.
func (l *Logger) FinishRun(ctx context.Context, runID, agent string, c store.RunCompletion) error {
	if err := l.Store.CompleteRun(ctx, runID, c); err != nil {
		return err
	}
	return l.writeJSONMirror(runID, agent, c)
}

func (l *Logger) writeJSONMirror(runID, agent string, c store.RunCompletion) error {
	if l.RunsDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.RunsDir, 0755); err != nil {
		return fmt.Errorf("failed to create runs dir: %w", err)
	}

	errList := c.Errors
	if errList == nil {
		errList = []string{}
	}
	entry := map[string]any{
		"run_id":        runID,
		"agent":         agent,
		"status":        c.Status,
		"job_id":        c.JobID,
		"eval_results":  c.EvalResults,
		"tokens_used":   c.TokensUsed,
		"cost_estimate": c.CostEstimate,
		"latency_ms":    c.LatencyMS,
		"input_mode":    c.InputMode,
		"skip_upload":   c.SkipUpload,
		"skip_calendar": c.SkipCalendar,
		"errors":        errList,
		"error_count":   len(errList),
		"context":       c.Context,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}
	path := filepath.Join(l.RunsDir, runID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}
	return nil
}
