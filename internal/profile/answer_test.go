package profile

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan/inbox-agent/internal/llm"
)

type fakeClient struct {
	reply    string
	err      error
	lastUser string
}

func (f *fakeClient) Complete(ctx context.Context, system, user string, jsonMode bool) (llm.Response, error) {
	f.lastUser = user
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.reply, Usage: llm.Usage{TotalTokens: 10}}, nil
}

func (f *fakeClient) Close() error { return nil }

func sampleAgent(client llm.Client) *Agent {
	return &Agent{
		Client: client,
		Profile: Profile{
			Name:        "Dana Example",
			Positioning: "Growth-focused product manager",
			Highlights:  []string{"Shipped a fraud platform at Acme"},
		},
		Bank: []Bullet{{Text: "Built the Orion platform", Tags: []string{"platform"}}},
	}
}

func TestSelectNarrative(t *testing.T) {
	p := Profile{Positioning: "Growth-focused product manager"}
	tests := []struct {
		query string
		want  string
	}{
		{"tell me about your machine learning work", NarrativeAI},
		{"what did you do for retention?", NarrativeGrowth},
		{"experience with CRM tooling?", NarrativeMartech},
		// No query keyword: positioning decides.
		{"give me a short bio", NarrativeGrowth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectNarrative(tt.query, p), tt.query)
	}

	// Nothing to go on anywhere defaults to the AI angle.
	assert.Equal(t, NarrativeAI, SelectNarrative("short bio please", Profile{}))
}

func TestAgentAnswer_Grounded(t *testing.T) {
	client := &fakeClient{reply: "Dana Example shipped a fraud platform at Acme and built the Orion platform."}
	agent := sampleAgent(client)

	ans, err := agent.Answer(context.Background(), "what has Dana built?")
	require.NoError(t, err)

	assert.Contains(t, ans.Text, "fraud platform")
	assert.Equal(t, NarrativeGrowth, ans.Narrative)
	assert.Empty(t, ans.Ungrounded)
	assert.Equal(t, 10, ans.Usage.TotalTokens)

	// The question and the selected angle both reach the model.
	assert.Contains(t, client.lastUser, "what has Dana built?")
	assert.Contains(t, client.lastUser, "[Narrative angle: growth]")
}

func TestAgentAnswer_UngroundedClaimFlagged(t *testing.T) {
	client := &fakeClient{reply: "Dana Example led the Starlight Initiative at Globex Corporation."}
	agent := sampleAgent(client)

	ans, err := agent.Answer(context.Background(), "give me a bio")
	require.NoError(t, err)

	require.NotEmpty(t, ans.Ungrounded)
	joined := strings.Join(ans.Ungrounded, " ")
	assert.Contains(t, joined, "Starlight Initiative")
	assert.Contains(t, joined, "Globex Corporation")
}

func TestAgentAnswer_ClientErrorSurfaces(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("model unavailable")}
	agent := sampleAgent(client)

	_, err := agent.Answer(context.Background(), "bio please")
	assert.ErrorContains(t, err, "model unavailable")
}
