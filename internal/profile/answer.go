package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/karan/inbox-agent/internal/evals"
	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/prompts"
)

// Narrative angles the answer agent can lead with.
const (
	NarrativeAI      = "ai"
	NarrativeGrowth  = "growth"
	NarrativeMartech = "martech"
)

// narrativeKeywords maps each narrative to the query terms that select it.
// Checked in order; the first hit wins.
var narrativeKeywords = []struct {
	narrative string
	keywords  []string
}{
	{NarrativeAI, []string{"ai", "ml", "machine learning", "llm", "data science"}},
	{NarrativeGrowth, []string{"growth", "acquisition", "retention", "conversion", "funnel"}},
	{NarrativeMartech, []string{"martech", "marketing", "automation", "crm", "campaign"}},
}

// SelectNarrative picks the narrative angle for a query: query keywords
// first, then the profile's own positioning, then the AI angle as default.
func SelectNarrative(query string, p Profile) string {
	for _, text := range []string{strings.ToLower(query), strings.ToLower(p.Positioning)} {
		for _, n := range narrativeKeywords {
			for _, kw := range n.keywords {
				if strings.Contains(text, kw) {
					return n.narrative
				}
			}
		}
	}
	return NarrativeAI
}

// Answer is a grounded reply to a question about the applicant.
type Answer struct {
	Text       string
	Narrative  string
	Ungrounded []string
	Usage      llm.Usage
}

// Agent answers questions about the applicant, grounded in the profile and
// the bullet bank. Read-only: it returns text and never touches tools.
type Agent struct {
	Client  llm.Client
	Profile Profile
	Bank    []Bullet
}

// Answer responds to a free-form question. The reply is constrained to facts
// in the profile and bullet bank; proper nouns the model introduces anyway
// are reported in Ungrounded so the caller can flag them.
func (a *Agent) Answer(ctx context.Context, query string) (Answer, error) {
	narrative := SelectNarrative(query, a.Profile)

	profileJSON, err := json.MarshalIndent(a.Profile, "", "  ")
	if err != nil {
		return Answer{}, fmt.Errorf("failed to encode profile: %w", err)
	}
	bankJSON, err := json.MarshalIndent(a.Bank, "", "  ")
	if err != nil {
		return Answer{}, fmt.Errorf("failed to encode bullet bank: %w", err)
	}

	system := prompts.Format(prompts.MustLoad("inbox.json", "profile_answer", 1), map[string]string{
		"Name":       a.Profile.Name,
		"Profile":    string(profileJSON),
		"BulletBank": string(bankJSON),
	})
	user := fmt.Sprintf("[Narrative angle: %s]\n\nQuestion: %s", narrative, query)

	resp, err := a.Client.Complete(ctx, system, user, false)
	if err != nil {
		return Answer{}, fmt.Errorf("profile answer failed: %w", err)
	}

	allowed := append([]string{string(profileJSON)}, BulletTexts(a.Bank)...)
	return Answer{
		Text:       strings.TrimSpace(resp.Text),
		Narrative:  narrative,
		Ungrounded: evals.UngroundedSpans(resp.Text, allowed),
		Usage:      resp.Usage,
	}, nil
}
