package evals

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/karan/inbox-agent/internal/jd"
	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/prompts"
)

// Soft evaluations are LLM-judge quality scores on a 0.0-1.0 scale. Unlike
// the hard checks they cost a model call, so they run offline or on demand,
// and they never gate anything.

type judgeVerdict struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// ScoreResumeRelevance asks an LLM judge how well a resume aligns with a
// job description.
func ScoreResumeRelevance(ctx context.Context, client llm.Client, jdText, resumeText string) (float64, error) {
	system := prompts.MustLoad("inbox.json", "judge_resume_relevance", 1)
	user := fmt.Sprintf("JOB DESCRIPTION:\n%s\n\nRESUME:\n%s", jdText, resumeText)
	return judge(ctx, client, system, user)
}

// ScoreJDAccuracy asks an LLM judge how accurately a JD was extracted from
// the raw posting text.
func ScoreJDAccuracy(ctx context.Context, client llm.Client, rawText string, extracted jd.Schema) (float64, error) {
	encoded, err := json.MarshalIndent(extracted, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode extraction: %w", err)
	}
	system := prompts.MustLoad("inbox.json", "judge_jd_accuracy", 1)
	user := fmt.Sprintf("RAW TEXT:\n%s\n\nEXTRACTION:\n%s", rawText, encoded)
	return judge(ctx, client, system, user)
}

func judge(ctx context.Context, client llm.Client, system, user string) (float64, error) {
	resp, err := client.Complete(ctx, system, user, true)
	if err != nil {
		return 0, fmt.Errorf("judge call failed: %w", err)
	}

	var v judgeVerdict
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(resp.Text)), &v); err != nil {
		return 0, fmt.Errorf("bad judge verdict: %w", err)
	}

	score := v.Score / 100
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
