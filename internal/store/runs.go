package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Run lifecycle statuses. A run is inserted as started before any pipeline
// stage executes, so in-flight runs stay observable across a crash.
const (
	RunStatusStarted   = "started"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is a persisted telemetry record.
type Run struct {
	ID           int64
	RunID        string
	Agent        string
	JobID        sql.NullInt64
	Status       string
	EvalResults  map[string]any
	TokensUsed   int
	CostEstimate float64
	LatencyMS    int
	InputMode    string
	SkipUpload   bool
	SkipCalendar bool
	Errors       []string
	Context      map[string]any
	CreatedAt    string
	CompletedAt  sql.NullString
}

// RunCompletion carries everything written when a run is finalized.
type RunCompletion struct {
	Status       string
	JobID        *int64
	EvalResults  any
	TokensUsed   int
	CostEstimate float64
	LatencyMS    int
	InputMode    string
	SkipUpload   bool
	SkipCalendar bool
	Errors       []string
	Context      map[string]any
}

// InsertRun starts a new run record with status 'started'.
func (s *Store) InsertRun(ctx context.Context, runID, agent string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, agent, status, created_at) VALUES (?, ?, ?, ?)`,
		runID, agent, RunStatusStarted, nowISO(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// CompleteRun finalizes a run record. Called exactly once per run.
func (s *Store) CompleteRun(ctx context.Context, runID string, c RunCompletion) error {
	if c.Status == "" {
		c.Status = RunStatusCompleted
	}

	evalJSON, err := marshalOrNil(c.EvalResults)
	if err != nil {
		return fmt.Errorf("failed to marshal eval results: %w", err)
	}
	errorsJSON, err := marshalOrNil(c.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}
	contextJSON, err := marshalOrNil(c.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	var jobID any
	if c.JobID != nil {
		jobID = *c.JobID
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE runs
		    SET status = ?, job_id = ?, eval_results = ?, tokens_used = ?,
		        cost_estimate = ?, latency_ms = ?, input_mode = ?,
		        skip_upload = ?, skip_calendar = ?, errors = ?, context = ?,
		        completed_at = ?
		  WHERE run_id = ?`,
		c.Status, jobID, evalJSON, c.TokensUsed, c.CostEstimate, c.LatencyMS,
		c.InputMode, c.SkipUpload, c.SkipCalendar, errorsJSON, contextJSON,
		nowISO(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	return nil
}

// UpdateRunCost patches the cost of a finished run. Used by the deferred
// cost resolver after the true billing figure becomes available.
func (s *Store) UpdateRunCost(ctx context.Context, runID string, cost float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET cost_estimate = ? WHERE run_id = ?`, cost, runID)
	if err != nil {
		return fmt.Errorf("failed to update run cost %s: %w", runID, err)
	}
	return nil
}

// GetRun fetches a run by its run_id. Returns sql.ErrNoRows when absent.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, agent, job_id, status, eval_results, tokens_used,
		        cost_estimate, latency_ms, COALESCE(input_mode, ''),
		        COALESCE(skip_upload, 0), COALESCE(skip_calendar, 0),
		        errors, context, created_at, completed_at
		   FROM runs WHERE run_id = ?`, runID)

	var run Run
	var evalJSON, errorsJSON, contextJSON sql.NullString
	var tokens, latency sql.NullInt64
	var cost sql.NullFloat64
	err := row.Scan(&run.ID, &run.RunID, &run.Agent, &run.JobID, &run.Status,
		&evalJSON, &tokens, &cost, &latency, &run.InputMode,
		&run.SkipUpload, &run.SkipCalendar, &errorsJSON, &contextJSON,
		&run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return Run{}, err
	}

	run.TokensUsed = int(tokens.Int64)
	run.CostEstimate = cost.Float64
	run.LatencyMS = int(latency.Int64)
	if evalJSON.Valid && evalJSON.String != "" {
		if err := json.Unmarshal([]byte(evalJSON.String), &run.EvalResults); err != nil {
			return Run{}, fmt.Errorf("corrupt eval_results for run %s: %w", runID, err)
		}
	}
	if errorsJSON.Valid && errorsJSON.String != "" {
		if err := json.Unmarshal([]byte(errorsJSON.String), &run.Errors); err != nil {
			return Run{}, fmt.Errorf("corrupt errors for run %s: %w", runID, err)
		}
	}
	if contextJSON.Valid && contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &run.Context); err != nil {
			return Run{}, fmt.Errorf("corrupt context for run %s: %w", runID, err)
		}
	}
	return run, nil
}

// EvalResults returns the decoded eval_results blob of every run that
// recorded one, oldest first. Feeds the release gate.
func (s *Store) EvalResults(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT eval_results FROM runs WHERE eval_results IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query eval results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []map[string]any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var blob map[string]any
		if err := json.Unmarshal([]byte(raw), &blob); err != nil {
			return nil, fmt.Errorf("corrupt eval_results row: %w", err)
		}
		out = append(out, blob)
	}
	return out, rows.Err()
}

func marshalOrNil(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
