package evals

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan/inbox-agent/internal/jd"
	"github.com/karan/inbox-agent/internal/llm"
)

type fakeJudge struct {
	reply string
	err   error
}

func (f fakeJudge) Complete(ctx context.Context, system, user string, jsonMode bool) (llm.Response, error) {
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.reply}, nil
}

func (f fakeJudge) Close() error { return nil }

func TestScoreResumeRelevance(t *testing.T) {
	score, err := ScoreResumeRelevance(context.Background(),
		fakeJudge{reply: `{"score": 85, "reasoning": "strong overlap"}`},
		"PM role at Acme", "resume text")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, score, 1e-9)
}

func TestScoreJDAccuracy_ClampsOutOfRange(t *testing.T) {
	schema := jd.Schema{Company: "Acme", Role: "PM"}

	score, err := ScoreJDAccuracy(context.Background(),
		fakeJudge{reply: `{"score": 140}`}, "raw posting", schema)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	score, err = ScoreJDAccuracy(context.Background(),
		fakeJudge{reply: `{"score": -5}`}, "raw posting", schema)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestJudge_BadVerdictIsAnError(t *testing.T) {
	_, err := ScoreResumeRelevance(context.Background(),
		fakeJudge{reply: "not json"}, "jd", "resume")
	assert.ErrorContains(t, err, "bad judge verdict")

	_, err = ScoreResumeRelevance(context.Background(),
		fakeJudge{err: fmt.Errorf("model unavailable")}, "jd", "resume")
	assert.ErrorContains(t, err, "judge call failed")
}

func TestRunGate(t *testing.T) {
	clean := map[string]any{
		"compile_success":        true,
		"forbidden_claims_count": float64(0),
		"edit_scope_violations":  float64(0),
	}
	dirty := map[string]any{
		"compile_success":        false,
		"forbidden_claims_count": float64(2),
		"edit_scope_violations":  float64(1),
	}

	// Vacuous pass with no results.
	assert.True(t, RunGate(nil).Passed())

	report := RunGate([]map[string]any{clean, clean})
	assert.True(t, report.Passed())
	assert.Equal(t, 1.0, report.CompileRate())

	report = RunGate([]map[string]any{clean, dirty})
	assert.False(t, report.Passed())
	assert.Equal(t, 2, report.ForbiddenClaims)
	assert.Equal(t, 1, report.EditViolations)
	assert.InDelta(t, 0.5, report.CompileRate(), 1e-9)
	assert.Len(t, report.Failures, 3)
}
