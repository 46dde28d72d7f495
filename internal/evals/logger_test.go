package evals

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan/inbox-agent/internal/store"
)

func TestLogger_TwoPhaseLifecycle(t *testing.T) {
	root := t.TempDir()
	s, err := store.Open(filepath.Join(root, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	logger := &Logger{Store: s, RunsDir: filepath.Join(root, "runs")}
	ctx := context.Background()

	runID, err := logger.StartRun(ctx, "inbox")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	// The start row is visible before the run finishes.
	run, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, store.RunStatusStarted, run.Status)

	require.NoError(t, logger.FinishRun(ctx, runID, "inbox", store.RunCompletion{
		Status:      store.RunStatusCompleted,
		EvalResults: Results{CompileSuccess: true},
		TokensUsed:  42,
		Errors:      []string{"calendar: boom"},
	}))

	run, err = s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, store.RunStatusCompleted, run.Status)
	assert.Equal(t, 42, run.TokensUsed)

	// JSON mirror lands next to the database record.
	data, err := os.ReadFile(filepath.Join(root, "runs", runID+".json"))
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, runID, entry["run_id"])
	assert.EqualValues(t, 1, entry["error_count"])
}
